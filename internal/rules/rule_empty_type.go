package rules

import (
	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

var emptyType = Rule{
	ID:              "EMPTY-TYPE",
	Summary:         "Concrete type declares nothing but constructors.",
	Kind:            ir.KindUnusedCode,
	DefaultSeverity: ir.SeverityLow,
	Docs:            "Types deriving from something other than System.Object or System.ValueType inherit their behavior and are not reported.",
	Eval:            evalEmptyType,
}

func evalEmptyType(_ *Env, sym enumerate.Symbol, _ il.Facts) (*ir.Violation, error) {
	t := sym.Type
	if !sym.IsType() || !concreteType(t) {
		return nil, nil
	}
	switch t.BaseType {
	case "", "System.Object", "System.ValueType":
	default:
		return nil, nil
	}
	for _, m := range t.Members {
		if m.Kind != ir.MemberConstructor {
			return nil, nil
		}
	}
	return &ir.Violation{Message: "placeholder type: no members besides constructors"}, nil
}
