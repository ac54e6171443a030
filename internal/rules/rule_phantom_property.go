package rules

import (
	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

var phantomProperty = Rule{
	ID:              "PHANTOM-PROPERTY",
	Summary:         "Auto-implemented property that nothing reads or writes.",
	Kind:            ir.KindUnusedCode,
	DefaultSeverity: ir.SeverityLow,
	Stage:           StageSet,
	Docs:            "Also fires for properties whose names say they are unused or placeholders.",
	Eval:            evalPhantomProperty,
}

func evalPhantomProperty(env *Env, sym enumerate.Symbol, _ il.Facts) (*ir.Violation, error) {
	m := sym.Member
	if m == nil || m.Kind != ir.MemberProperty {
		return nil, nil
	}
	if MatchName(env.Settings.Naming.PhantomPatterns, m.Name) {
		return &ir.Violation{Message: "phantom property: the name says it is unused"}, nil
	}
	if !m.AutoImplemented || MatchMarker(env.Settings.EntryPoints.Markers, m.Markers) {
		return nil, nil
	}
	if env.Refs.Referenced(m.Getter) || env.Refs.Referenced(m.Setter) {
		return nil, nil
	}
	return &ir.Violation{Message: "phantom property: auto-implemented and never accessed"}, nil
}
