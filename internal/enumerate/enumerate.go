// Package enumerate walks program units and yields the symbols rules run on.
package enumerate

import (
	"fmt"
	"iter"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codewithboateng/storytest/internal/ir"
)

const (
	RuleUnitNotAnalyzable = "UNIT-NOT-ANALYZABLE"
	RuleInvalidExemption  = "INVALID-EXEMPTION"
)

// Capabilities describes what the running environment provides. Units that
// reference a host unit (by name prefix) are skipped when the host runtime is
// not available.
type Capabilities struct {
	HostRuntime  bool
	HostPrefixes []string
}

type Filter struct {
	// Units decides which units are analyzed; nil admits all.
	Units        func(name string) bool
	Capabilities Capabilities
}

// Symbol is a type (Member == nil) or one of its members.
type Symbol struct {
	Unit   *ir.Unit
	Type   *ir.Type
	Member *ir.Member
}

func (s Symbol) IsType() bool { return s.Member == nil }

// Violation returns a violation located at this symbol.
func (s Symbol) Violation() ir.Violation {
	v := ir.Violation{Unit: s.Unit.Name}
	if s.Type != nil {
		v.Type = s.Type.FullName()
	}
	if s.Member != nil {
		v.Member = s.Member.Name
		v.Token = s.Member.Token
	}
	return v
}

// Entry is either a symbol to evaluate or a diagnostic about the walk itself.
type Entry struct {
	Symbol     Symbol
	Diagnostic *ir.Violation
}

// NameFilter admits names matching any include pattern (all when include is
// empty) and no exclude pattern. Patterns use doublestar syntax.
func NameFilter(include, exclude []string) (func(string) bool, error) {
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid unit pattern %q", p)
		}
	}
	return func(name string) bool {
		if len(include) > 0 && !matchAny(include, name) {
			return false
		}
		return !matchAny(exclude, name)
	}, nil
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Walk yields candidate symbols in unit, type, member declaration order.
// The sequence is lazy and can be ranged over any number of times.
func Walk(units []*ir.Unit, f Filter) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, u := range units {
			if !f.Admits(u) {
				continue
			}
			if u.LoadErr != nil {
				d := unitNotAnalyzable(u)
				if !yield(Entry{Symbol: Symbol{Unit: u}, Diagnostic: &d}) {
					return
				}
				continue
			}
			for _, t := range u.Types {
				if !walkType(u, t, yield) {
					return
				}
			}
		}
	}
}

func walkType(u *ir.Unit, t *ir.Type, yield func(Entry) bool) bool {
	if Generated(t.Name) || t.Exemption != nil {
		return true
	}
	ts := Symbol{Unit: u, Type: t}
	if t.ExemptionErr != nil {
		d := invalidExemption(ts, t.ExemptionErr)
		if !yield(Entry{Symbol: ts, Diagnostic: &d}) {
			return false
		}
	}
	if !yield(Entry{Symbol: ts}) {
		return false
	}
	for _, m := range t.Members {
		if Generated(m.Name) || m.Exemption != nil || m.IsAccessor() {
			continue
		}
		if t.Kind == ir.TypeEnum && !m.Literal {
			continue
		}
		ms := Symbol{Unit: u, Type: t, Member: m}
		if m.ExemptionErr != nil {
			d := invalidExemption(ms, m.ExemptionErr)
			if !yield(Entry{Symbol: ms, Diagnostic: &d}) {
				return false
			}
		}
		if !yield(Entry{Symbol: ms}) {
			return false
		}
	}
	return true
}

// Admits applies the unit predicate and the host capability check.
func (f Filter) Admits(u *ir.Unit) bool {
	if f.Units != nil && !f.Units(u.Name) {
		return false
	}
	if !f.Capabilities.HostRuntime && f.Capabilities.dependsOnHost(u) {
		return false
	}
	return true
}

func (c Capabilities) dependsOnHost(u *ir.Unit) bool {
	for _, p := range c.HostPrefixes {
		if strings.HasPrefix(u.Name, p) {
			return true
		}
		for _, ref := range u.References {
			if strings.HasPrefix(ref, p) {
				return true
			}
		}
	}
	return false
}

// Generated reports compiler-generated names such as <Run>d__1 or __StaticArrayInit.
func Generated(name string) bool {
	return strings.HasPrefix(name, "<") || strings.HasPrefix(name, "__")
}

func unitNotAnalyzable(u *ir.Unit) ir.Violation {
	return ir.Violation{
		Unit:     u.Name,
		Type:     u.Name,
		RuleID:   RuleUnitNotAnalyzable,
		Kind:     ir.KindOther,
		Severity: ir.SeverityHigh,
		Message:  fmt.Sprintf("unit not analyzable: %v", u.LoadErr),
	}
}

func invalidExemption(s Symbol, err error) ir.Violation {
	v := s.Violation()
	v.RuleID = RuleInvalidExemption
	v.Kind = ir.KindOther
	v.Severity = ir.SeverityHigh
	v.Message = fmt.Sprintf("exemption ignored: %v", err)
	return v
}
