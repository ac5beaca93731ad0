package settings

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoEvaluator = errors.New("settings: evaluator not configured")

// evaluateRule runs a single validation rule expression against value. The
// rule must produce a boolean result.
func (x *Extension) evaluateRule(version string, value any, rule string) (bool, error) {
	if rule == "" {
		return false, fmt.Errorf("expression must not be empty")
	}
	evaluator, err := x.resolveEvaluator()
	if err != nil {
		return false, err
	}
	ctx := RuleContext{Value: value, Version: version}.withDefaultNow().withDefaultMaps()
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	result, evalErr := evaluator.Evaluate(ctx, rule)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, rule, ctx.versionLabel(), evalErr)
	x.ruleLogger().LogRule(RuleLogEvent{
		Engine:   engine,
		Expr:     rule,
		Version:  ctx.versionLabel(),
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return false, evalErr
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, &RuleError{
			Version: version,
			Rule:    rule,
			Err:     fmt.Errorf("rule must evaluate to bool, got %T", result),
		}
	}
	return ok, nil
}

// checkRules evaluates every rule declared by a RuleCarrier model, stopping
// at the first failure.
func (x *Extension) checkRules(version string, model Model, value any) error {
	carrier, ok := model.(RuleCarrier)
	if !ok {
		return nil
	}
	for _, rule := range carrier.ValidationRules() {
		passed, err := x.evaluateRule(version, value, rule)
		if err != nil {
			return err
		}
		if !passed {
			return &RuleError{
				Version: version,
				Rule:    rule,
				Err:     errors.New("rule evaluated to false"),
			}
		}
	}
	return nil
}

func (x *Extension) resolveEvaluator() (Evaluator, error) {
	if x.cfg.evaluator != nil {
		return x.cfg.evaluator, nil
	}
	evaluator := defaultEvaluator(x.cfg)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	return evaluator, nil
}

// defaultEvaluator builds the expr-backed evaluator used when no explicit
// evaluator was configured.
func defaultEvaluator(cfg extensionConfig) Evaluator {
	var exprOpts []ExprEvaluatorOption
	if cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cfg.programCache))
	}
	if cfg.helpers != nil {
		exprOpts = append(exprOpts, ExprWithHelperRegistry(cfg.helpers))
	}
	return NewExprEvaluator(exprOpts...)
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*settings.exprEvaluator":
		return "expr"
	case "*settings.celEvaluator":
		return "cel"
	case "*settings.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
