package settings

import "time"

// RuleLogEvent describes a validation rule evaluation attempt for logging.
type RuleLogEvent struct {
	Engine   string
	Expr     string
	Version  string
	Duration time.Duration
	Err      error
}

// RuleLogger records rule evaluation events.
type RuleLogger interface {
	LogRule(RuleLogEvent)
}

// RuleLoggerFunc adapts a function to RuleLogger.
type RuleLoggerFunc func(RuleLogEvent)

// LogRule implements RuleLogger.
func (f RuleLoggerFunc) LogRule(event RuleLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopRuleLogger struct{}

func (noopRuleLogger) LogRule(RuleLogEvent) {}

// WithRuleLogger attaches a rule evaluation logger to the extension.
func WithRuleLogger(logger RuleLogger) Option {
	return func(cfg *extensionConfig) {
		if logger == nil {
			cfg.ruleLogger = noopRuleLogger{}
			return
		}
		cfg.ruleLogger = logger
	}
}
