package rules

import (
	"github.com/codewithboateng/storytest/internal/ir"
)

// ReferenceIndex counts how often each member is the target of a call,
// field access or function pointer load anywhere in the unit set.
//
// Definition tokens are counted against the exact member, so calling one
// overload does not mark its siblings. Member references name their target
// only as Namespace.Type::Member and are counted by that name.
type ReferenceIndex struct {
	defs  map[*ir.Member]int
	names map[string]int
}

// BuildReferenceIndex scans every body in the set, including accessors,
// exempt and compiler-generated members. A member calling itself does not
// count as a reference to itself.
func BuildReferenceIndex(units []*ir.Unit) *ReferenceIndex {
	idx := &ReferenceIndex{defs: map[*ir.Member]int{}, names: map[string]int{}}
	for _, u := range units {
		if u.LoadErr != nil {
			continue
		}
		for _, t := range u.Types {
			for _, m := range t.Members {
				facts, ok := m.Facts()
				if !ok {
					continue
				}
				self := m.QualifiedName()
				for _, tok := range facts.References {
					if def, ok := u.Definition(tok); ok {
						if def != m {
							idx.defs[def]++
						}
						continue
					}
					name, ok := u.MemberRefs[tok]
					if !ok || name == self {
						continue
					}
					idx.names[name]++
				}
			}
		}
	}
	return idx
}

// Count returns the references to m: exact definition hits plus name
// references from member reference tables.
func (r *ReferenceIndex) Count(m *ir.Member) int {
	if r == nil || m == nil {
		return 0
	}
	return r.defs[m] + r.names[m.QualifiedName()]
}

// Referenced is shorthand for Count(m) > 0.
func (r *ReferenceIndex) Referenced(m *ir.Member) bool {
	return r.Count(m) > 0
}

// Covers reports whether m counts as reachable from outside the set.
func (e EntryPoints) Covers(m *ir.Member) bool {
	if m.Kind == ir.MemberConstructor || m.Special || m.Abstract || m.Virtual || m.Override {
		return true
	}
	if MatchMarker(e.Markers, m.Markers) || MatchName(e.Names, m.Name) {
		return true
	}
	if e.PublicAPI && m.Visibility == ir.Public {
		if t := m.Owner(); t != nil && t.Visibility == ir.Public {
			return true
		}
	}
	return false
}
