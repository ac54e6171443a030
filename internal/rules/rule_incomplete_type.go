package rules

import (
	"strings"

	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

var incompleteType = Rule{
	ID:              "INCOMPLETE-TYPE",
	Summary:         "Concrete type leaves inherited abstract members unimplemented.",
	Kind:            ir.KindIncompleteImplementation,
	DefaultSeverity: ir.SeverityHigh,
	Docs:            "Only base types present in the analyzed units are followed.",
	Eval:            evalIncompleteType,
}

func evalIncompleteType(env *Env, sym enumerate.Symbol, _ il.Facts) (*ir.Violation, error) {
	t := sym.Type
	if !sym.IsType() || !concreteType(t) {
		return nil, nil
	}

	implemented := map[string]bool{}
	for _, m := range t.Members {
		if !m.Abstract {
			implemented[m.Name] = true
		}
	}

	var missing []string
	seen := map[*ir.Type]bool{t: true}
	for b := env.BaseOf(t); b != nil && !seen[b]; b = env.BaseOf(b) {
		seen[b] = true
		for _, m := range b.Members {
			switch {
			case m.Abstract && !implemented[m.Name]:
				missing = append(missing, m.Name)
				implemented[m.Name] = true // report once
			case !m.Abstract:
				implemented[m.Name] = true
			}
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	return &ir.Violation{Message: "type has unimplemented abstract members: " + strings.Join(missing, ", ")}, nil
}
