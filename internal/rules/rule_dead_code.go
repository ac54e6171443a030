package rules

import (
	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

var deadCode = Rule{
	ID:              "DEAD-CODE",
	Summary:         "Method is never referenced and is not an entry point.",
	Kind:            ir.KindUnusedCode,
	DefaultSeverity: ir.SeverityLow,
	Stage:           StageSet,
	Docs:            "References are counted across every analyzed unit. Entry points follow the entry_points policy.",
	Eval:            evalDeadCode,
}

func evalDeadCode(env *Env, sym enumerate.Symbol, _ il.Facts) (*ir.Violation, error) {
	m := sym.Member
	if m == nil || m.Kind != ir.MemberMethod || env.Settings.EntryPoints.Covers(m) {
		return nil, nil
	}
	if env.Refs.Referenced(m) {
		return nil, nil
	}
	return &ir.Violation{Message: "dead code: never referenced in the analyzed units"}, nil
}
