// Package reporting turns violations into a Report and writes it out.
package reporting

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/codewithboateng/storytest/internal/ir"
)

// Report is the deduplicated, ordered result of one pass. Build it with
// Aggregate and treat it as read-only.
type Report struct {
	Violations []ir.Violation
	Summary    Summary
}

type Summary struct {
	Total      int
	ByRule     map[string]int
	BySeverity map[ir.Severity]int
	ByKind     map[ir.Kind]int
	// RuleOrder lists the rules seen, in report order.
	RuleOrder []string
}

type options struct {
	order []string
}

type Option func(*options)

// WithRuleOrder ranks rules for violations on the same symbol. Rules not
// listed sort after listed ones, by id. Without it, rules rank by first
// appearance in the input.
func WithRuleOrder(ids []string) Option {
	return func(o *options) { o.order = ids }
}

// Aggregate drops duplicate (symbol, rule) pairs, keeping the first, and
// sorts by unit, type, member, member token, rule rank and rule id.
func Aggregate(vs []ir.Violation, opts ...Option) *Report {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	seen := make(map[string]struct{}, len(vs))
	out := make([]ir.Violation, 0, len(vs))
	for _, v := range vs {
		k := v.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}

	order := o.order
	if order == nil {
		for _, v := range out {
			if !slices.Contains(order, v.RuleID) {
				order = append(order, v.RuleID)
			}
		}
	}
	rank := make(map[string]int, len(order))
	for i, id := range order {
		if _, ok := rank[id]; !ok {
			rank[id] = i
		}
	}
	rankOf := func(id string) int {
		if r, ok := rank[id]; ok {
			return r
		}
		return len(order)
	}

	slices.SortStableFunc(out, func(a, b ir.Violation) int {
		return cmp.Or(
			cmp.Compare(a.Unit, b.Unit),
			cmp.Compare(a.Type, b.Type),
			cmp.Compare(a.Member, b.Member),
			cmp.Compare(a.Token, b.Token),
			cmp.Compare(rankOf(a.RuleID), rankOf(b.RuleID)),
			cmp.Compare(a.RuleID, b.RuleID),
			cmp.Compare(a.Source, b.Source),
		)
	})

	s := Summary{
		Total:      len(out),
		ByRule:     map[string]int{},
		BySeverity: map[ir.Severity]int{},
		ByKind:     map[ir.Kind]int{},
	}
	for _, v := range out {
		if s.ByRule[v.RuleID] == 0 {
			s.RuleOrder = append(s.RuleOrder, v.RuleID)
		}
		s.ByRule[v.RuleID]++
		s.BySeverity[v.Severity]++
		s.ByKind[v.Kind]++
	}
	slices.SortStableFunc(s.RuleOrder, func(a, b string) int {
		return cmp.Or(cmp.Compare(rankOf(a), rankOf(b)), cmp.Compare(a, b))
	})
	return &Report{Violations: out, Summary: s}
}

// Compliant is true iff the report has no violations.
func (r *Report) Compliant() bool { return len(r.Violations) == 0 }

// HasViolations is the CI signal.
func (r *Report) HasViolations() bool { return !r.Compliant() }

// StructuredViolation is the JSON shape of one violation.
type StructuredViolation struct {
	Path     string      `json:"path"`
	Unit     string      `json:"unit"`
	Token    uint32      `json:"token,omitempty"`
	Rule     string      `json:"rule"`
	Kind     ir.Kind     `json:"kind"`
	Severity ir.Severity `json:"severity"`
	Message  string      `json:"message"`
	Source   string      `json:"source,omitempty"`
}

// Structured is the key-value form of a Report.
type Structured struct {
	TotalViolations      int                   `json:"totalViolations"`
	Compliant            bool                  `json:"compliant"`
	ViolationsByRule     map[string]int        `json:"violationsByRule"`
	ViolationsBySeverity map[ir.Severity]int   `json:"violationsBySeverity"`
	ViolationsByKind     map[ir.Kind]int       `json:"violationsByType"`
	Violations           []StructuredViolation `json:"violations"`
}

func (r *Report) Structured() Structured {
	s := Structured{
		TotalViolations:      r.Summary.Total,
		Compliant:            r.Compliant(),
		ViolationsByRule:     r.Summary.ByRule,
		ViolationsBySeverity: r.Summary.BySeverity,
		ViolationsByKind:     r.Summary.ByKind,
		Violations:           make([]StructuredViolation, 0, len(r.Violations)),
	}
	for _, v := range r.Violations {
		s.Violations = append(s.Violations, StructuredViolation{
			Path:     v.Path(),
			Unit:     v.Unit,
			Token:    v.Token,
			Rule:     v.RuleID,
			Kind:     v.Kind,
			Severity: v.Severity,
			Message:  v.Message,
			Source:   v.Source,
		})
	}
	return s
}

// Text renders one "[Kind] Type.Member: message" line per violation and a
// summary footer with per-rule counts.
func (r *Report) Text() string {
	var sb strings.Builder
	for _, v := range r.Violations {
		fmt.Fprintf(&sb, "[%s] %s: %s\n", v.Kind, v.Path(), v.Message)
	}
	if r.Compliant() {
		sb.WriteString("No violations found. Code narrative is complete.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "\n%d violation(s): HIGH %d, MEDIUM %d, LOW %d\n",
		r.Summary.Total,
		r.Summary.BySeverity[ir.SeverityHigh],
		r.Summary.BySeverity[ir.SeverityMedium],
		r.Summary.BySeverity[ir.SeverityLow],
	)
	for _, id := range r.Summary.RuleOrder {
		fmt.Fprintf(&sb, "  %-24s %d\n", id, r.Summary.ByRule[id])
	}
	return sb.String()
}
