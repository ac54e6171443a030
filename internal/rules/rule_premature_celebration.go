package rules

import (
	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

var prematureCelebration = Rule{
	ID:              "PREMATURE-CELEBRATION",
	Summary:         "Member marked complete still throws NotImplementedException.",
	Kind:            ir.KindPrematureCelebration,
	DefaultSeverity: ir.SeverityHigh,
	Eval:            evalPrematureCelebration,
}

func evalPrematureCelebration(env *Env, sym enumerate.Symbol, facts il.Facts) (*ir.Violation, error) {
	m := sym.Member
	if m == nil || m.Body == nil || !facts.ThrowsNotImplemented {
		return nil, nil
	}
	if !MatchMarker(env.Settings.Naming.CompletionMarkers, m.Markers) {
		return nil, nil
	}
	return &ir.Violation{Message: "premature celebration: marked as complete but throws NotImplementedException"}, nil
}
