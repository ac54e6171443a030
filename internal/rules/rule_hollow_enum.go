package rules

import (
	"fmt"

	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

var hollowEnum = Rule{
	ID:              "HOLLOW-ENUM",
	Summary:         "Enum with at most one value, or only placeholder values.",
	Kind:            ir.KindUnusedCode,
	DefaultSeverity: ir.SeverityMedium,
	Eval:            evalHollowEnum,
}

func evalHollowEnum(env *Env, sym enumerate.Symbol, _ il.Facts) (*ir.Violation, error) {
	t := sym.Type
	if !sym.IsType() || t.Kind != ir.TypeEnum {
		return nil, nil
	}
	var names []string
	for _, m := range t.Members {
		if m.Literal {
			names = append(names, m.Name)
		}
	}
	if len(names) <= 1 {
		return &ir.Violation{Message: fmt.Sprintf("hollow enum: %d value(s) defined", len(names))}, nil
	}
	for _, n := range names {
		if !env.Settings.Naming.IsPlaceholderName(n) {
			return nil, nil
		}
	}
	return &ir.Violation{Message: "hollow enum: every value is a placeholder name"}, nil
}
