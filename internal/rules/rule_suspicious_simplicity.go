package rules

import (
	"fmt"

	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

const SimplicityThreshold = 0.6

var suspiciousSimplicity = Rule{
	ID:              "SUSPICIOUS-SIMPLICITY",
	Summary:         "Body shape scores as probably incomplete.",
	Kind:            ir.KindIncompleteImplementation,
	DefaultSeverity: ir.SeverityLow,
	Docs:            "Combines emptiness, placeholder throws, constant returns and absence of logic into one score.",
	Eval:            evalSuspiciousSimplicity,
}

func evalSuspiciousSimplicity(_ *Env, sym enumerate.Symbol, facts il.Facts) (*ir.Violation, error) {
	if !plainMethod(sym.Member) {
		return nil, nil
	}
	s := facts.Score()
	if s < SimplicityThreshold {
		return nil, nil
	}
	return &ir.Violation{Message: fmt.Sprintf("incompleteness score %.2f", s)}, nil
}
