package settings

import (
	"time"

	"github.com/goliatone/go-settings/pkg/activity"
)

// RuleContext carries inputs needed when evaluating a validation rule.
type RuleContext struct {
	Value    any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	Version  string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) versionLabel() string {
	if ctx.Version != "" {
		return ctx.Version
	}
	return "unknown"
}

// Evaluator executes rule expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Option configures an extension under construction.
type Option func(*extensionConfig)

type extensionConfig struct {
	evaluator       Evaluator
	programCache    ProgramCache
	helpers         *HelperRegistry
	ruleLogger      RuleLogger
	migrationLogger MigrationLogger
	activityHooks   activity.Hooks
}

func applyOptions(opts []Option) extensionConfig {
	cfg := extensionConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithRuleEvaluator configures the evaluator used for validation rules.
func WithRuleEvaluator(e Evaluator) Option {
	return func(cfg *extensionConfig) {
		cfg.evaluator = e
	}
}

// WithActivityHooks attaches activity hooks notified on extension operations.
// The slice is cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *extensionConfig) {
		cfg.activityHooks = normalized
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
