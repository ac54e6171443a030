package rules

import (
	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

var unsealedAbstract = Rule{
	ID:              "UNSEALED-ABSTRACT",
	Summary:         "Abstract member declared on a non-abstract type.",
	Kind:            ir.KindIncompleteImplementation,
	DefaultSeverity: ir.SeverityHigh,
	Eval:            evalUnsealedAbstract,
}

func evalUnsealedAbstract(_ *Env, sym enumerate.Symbol, _ il.Facts) (*ir.Violation, error) {
	m := sym.Member
	if m == nil || !m.Abstract {
		return nil, nil
	}
	if sym.Type.Abstract || sym.Type.Kind == ir.TypeInterface {
		return nil, nil
	}
	return &ir.Violation{Message: "abstract member in a non-abstract type (unsealed narrative element)"}, nil
}
