package rules

import (
	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

var placeholderThrow = Rule{
	ID:              "PLACEHOLDER-THROW",
	Summary:         "Member body only throws NotImplementedException.",
	Kind:            ir.KindIncompleteImplementation,
	DefaultSeverity: ir.SeverityHigh,
	Docs:            "The body constructs a NotImplementedException and throws it. Implement the member or remove it.",
	Eval:            evalPlaceholderThrow,
}

func evalPlaceholderThrow(_ *Env, sym enumerate.Symbol, facts il.Facts) (*ir.Violation, error) {
	if sym.Member == nil || sym.Member.Body == nil || !facts.ThrowsNotImplemented {
		return nil, nil
	}
	return &ir.Violation{Message: "throws NotImplementedException; the implementation is a placeholder"}, nil
}
