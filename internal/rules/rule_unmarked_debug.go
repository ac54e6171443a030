package rules

import (
	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

var unmarkedDebug = Rule{
	ID:              "UNMARKED-DEBUG",
	Summary:         "Debug/test/temp method without a temporary marker.",
	Kind:            ir.KindDebuggingCode,
	DefaultSeverity: ir.SeverityMedium,
	Docs:            "Mark leftover debugging helpers with a temporary marker such as [Obsolete] or remove them.",
	Eval:            evalUnmarkedDebug,
}

func evalUnmarkedDebug(env *Env, sym enumerate.Symbol, _ il.Facts) (*ir.Violation, error) {
	m := sym.Member
	if m == nil || m.Kind != ir.MemberMethod || m.Special {
		return nil, nil
	}
	n := env.Settings.Naming
	if !MatchName(n.DebugPatterns, m.Name) {
		return nil, nil
	}
	if MatchMarker(n.TemporaryMarkers, m.Markers) || MatchMarker(n.TemporaryMarkers, sym.Type.Markers) {
		return nil, nil
	}
	return &ir.Violation{Message: "debug/test method without a temporary marker (should be temporary)"}, nil
}
