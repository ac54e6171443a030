package rules

import (
	"strings"

	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

var constantReturn = Rule{
	ID:              "CONSTANT-RETURN",
	Summary:         "Method only returns a default constant.",
	Kind:            ir.KindIncompleteImplementation,
	DefaultSeverity: ir.SeverityMedium,
	Docs:            "Virtual and override methods are skipped.",
	Eval:            evalConstantReturn,
}

func evalConstantReturn(_ *Env, sym enumerate.Symbol, facts il.Facts) (*ir.Violation, error) {
	m := sym.Member
	if !plainMethod(m) || m.Virtual || m.Override || isVoid(m.ReturnType) {
		return nil, nil
	}
	if !facts.ReturnsConstant {
		return nil, nil
	}
	return &ir.Violation{Message: "returns a constant default value without any logic"}, nil
}

func isVoid(t string) bool {
	switch strings.TrimSpace(t) {
	case "", "void", "System.Void":
		return true
	}
	return false
}
