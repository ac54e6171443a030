package rules

import (
	"fmt"

	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

const RuleFailure = "RULE-FAILURE"

// Apply runs one rule on one symbol. A rule that errors or panics yields a
// RULE-FAILURE violation instead of taking the pass down.
func Apply(rule Rule, env *Env, sym enumerate.Symbol, facts il.Facts) (out *ir.Violation) {
	defer func() {
		if p := recover(); p != nil {
			out = failure(rule, sym, fmt.Errorf("panic: %v", p))
		}
	}()

	v, err := rule.Eval(env, sym, facts)
	if err != nil {
		return failure(rule, sym, err)
	}
	if v == nil {
		return nil
	}

	res := sym.Violation()
	if v.Type != "" {
		res.Type = v.Type
	}
	if v.Member != "" {
		res.Member = v.Member
	}
	res.RuleID = rule.ID
	res.Kind = v.Kind
	if res.Kind == "" {
		res.Kind = rule.Kind
	}
	res.Severity = v.Severity
	if res.Severity == "" {
		res.Severity = rule.DefaultSeverity
	}
	if res.Severity == "" {
		res.Severity = ir.SeverityLow
	}
	res.Message = v.Message
	if res.Message == "" {
		res.Message = rule.Summary
	}
	return &res
}

func failure(rule Rule, sym enumerate.Symbol, err error) *ir.Violation {
	v := sym.Violation()
	v.RuleID = RuleFailure
	v.Source = rule.ID
	v.Kind = ir.KindOther
	v.Severity = ir.SeverityHigh
	v.Message = fmt.Sprintf("rule %s failed: %v", rule.ID, err)
	return &v
}
