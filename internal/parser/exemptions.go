package parser

import (
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codewithboateng/storytest/internal/ir"
	"github.com/codewithboateng/storytest/internal/storage"
)

// ApplyExemptions attaches stored exemptions to matching types and members.
// A record matches a type by Namespace.Type and a member by
// Namespace.Type::Member. Inline exemptions win; a stored one replaces a
// malformed inline one. It returns the number of symbols exempted.
func ApplyExemptions(units []*ir.Unit, records []storage.Exemption, now time.Time) int {
	var active []storage.Exemption
	for _, r := range records {
		if r.Active(now) {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return 0
	}

	applied := 0
	for _, u := range units {
		for _, t := range u.Types {
			if t.Exemption == nil {
				if ex := match(active, t.FullName()); ex != nil {
					t.Exemption, t.ExemptionErr = ex, nil
					applied++
				}
			}
			for _, m := range t.Members {
				if m.Exemption != nil {
					continue
				}
				if ex := match(active, m.QualifiedName()); ex != nil {
					m.Exemption, m.ExemptionErr = ex, nil
					applied++
				}
			}
		}
	}
	return applied
}

func match(records []storage.Exemption, name string) *ir.Exemption {
	for _, r := range records {
		if ok, _ := doublestar.Match(r.Pattern, name); !ok {
			continue
		}
		if ex, err := ir.NewExemption(r.Justification); err == nil {
			return ex
		}
	}
	return nil
}
