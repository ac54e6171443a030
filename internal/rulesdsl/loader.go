// Package rulesdsl loads project rule packs written in YAML and registers
// them next to the built-in rules.
package rulesdsl

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
	"github.com/codewithboateng/storytest/internal/rules"
)

type dslPack struct {
	Rules []dslRule `yaml:"rules"`
}

type dslRule struct {
	ID       string `yaml:"id"`
	Summary  string `yaml:"summary"`
	Kind     string `yaml:"kind"`     // IncompleteImplementation|DebuggingCode|UnusedCode|PrematureCelebration|Other
	Severity string `yaml:"severity"` // LOW|MEDIUM|HIGH
	Message  string `yaml:"message"`
	// OptIn defaults to true: pack rules run only when listed in rules.enabled.
	OptIn *bool `yaml:"opt_in"`

	Where struct {
		Symbol               string   `yaml:"symbol"`    // type|method|property|field|member (default member)
		Name                 string   `yaml:"name"`      // regex on the symbol name (case-insensitive)
		TypeName             string   `yaml:"type_name"` // regex on Namespace.Type (case-insensitive)
		Marker               string   `yaml:"marker"`
		MissingMarker        string   `yaml:"missing_marker"`
		MaxLength            *int     `yaml:"max_length"`
		ThrowsNotImplemented *bool    `yaml:"throws_not_implemented"`
		ReturnsConstant      *bool    `yaml:"returns_constant"`
		MinScore             *float64 `yaml:"min_score"`
	} `yaml:"where"`
}

type compiled struct {
	rule       dslRule
	kind       ir.Kind
	severity   ir.Severity
	reName     *regexp.Regexp
	reTypeName *regexp.Regexp
}

// LoadAndRegister reads a pack and registers its rules into reg. It returns
// how many rules were registered before any error.
func LoadAndRegister(reg *rules.Registry, path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read rules pack: %w", err)
	}
	var pack dslPack
	if err := yaml.Unmarshal(b, &pack); err != nil {
		return 0, fmt.Errorf("parse yaml: %w", err)
	}
	// Nothing is registered unless the whole pack compiles.
	out := make([]rules.Rule, 0, len(pack.Rules))
	ids := map[string]bool{}
	for _, r := range pack.Rules {
		cr, err := compile(r)
		if err != nil {
			return 0, fmt.Errorf("compile rule %q: %w", r.ID, err)
		}
		rule := cr.toRule()
		id := strings.ToUpper(strings.TrimSpace(rule.ID))
		if _, taken := reg.Get(id); taken || ids[id] {
			return 0, fmt.Errorf("%s: %w", id, rules.ErrDuplicateRule)
		}
		ids[id] = true
		out = append(out, rule)
	}
	for i, rule := range out {
		if err := reg.Register(rule); err != nil {
			return i, err
		}
	}
	return len(out), nil
}

var kinds = map[string]ir.Kind{
	"incompleteimplementation": ir.KindIncompleteImplementation,
	"debuggingcode":            ir.KindDebuggingCode,
	"unusedcode":               ir.KindUnusedCode,
	"prematurecelebration":     ir.KindPrematureCelebration,
	"other":                    ir.KindOther,
}

func compile(r dslRule) (*compiled, error) {
	if r.ID == "" || r.Kind == "" || r.Severity == "" || r.Message == "" {
		return nil, fmt.Errorf("missing required fields (id/kind/severity/message)")
	}
	c := &compiled{rule: r}

	k, ok := kinds[strings.ToLower(strings.TrimSpace(r.Kind))]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", r.Kind)
	}
	c.kind = k

	switch sev := ir.Severity(strings.ToUpper(strings.TrimSpace(r.Severity))); sev {
	case ir.SeverityHigh, ir.SeverityMedium, ir.SeverityLow:
		c.severity = sev
	default:
		return nil, fmt.Errorf("unknown severity %q", r.Severity)
	}

	switch strings.ToLower(r.Where.Symbol) {
	case "", "member", "type", "method", "property", "field":
	default:
		return nil, fmt.Errorf("unknown symbol %q", r.Where.Symbol)
	}
	if r.Where.Name != "" {
		re, err := regexp.Compile("(?i)" + r.Where.Name)
		if err != nil {
			return nil, fmt.Errorf("name regex: %w", err)
		}
		c.reName = re
	}
	if r.Where.TypeName != "" {
		re, err := regexp.Compile("(?i)" + r.Where.TypeName)
		if err != nil {
			return nil, fmt.Errorf("type_name regex: %w", err)
		}
		c.reTypeName = re
	}
	return c, nil
}

func (c *compiled) toRule() rules.Rule {
	optIn := true
	if c.rule.OptIn != nil {
		optIn = *c.rule.OptIn
	}
	return rules.Rule{
		ID:              c.rule.ID,
		Summary:         c.rule.Summary,
		Kind:            c.kind,
		DefaultSeverity: c.severity,
		OptIn:           optIn,
		Docs:            "Loaded from a rule pack.",
		Eval:            c.eval,
	}
}

func (c *compiled) eval(_ *rules.Env, sym enumerate.Symbol, facts il.Facts) (*ir.Violation, error) {
	if !c.matches(sym, facts) {
		return nil, nil
	}
	return &ir.Violation{Message: c.rule.Message}, nil
}

func (c *compiled) matches(sym enumerate.Symbol, facts il.Facts) bool {
	w := c.rule.Where
	m := sym.Member

	switch strings.ToLower(w.Symbol) {
	case "type":
		if m != nil {
			return false
		}
	case "method":
		if m == nil || m.Kind != ir.MemberMethod {
			return false
		}
	case "property":
		if m == nil || m.Kind != ir.MemberProperty {
			return false
		}
	case "field":
		if m == nil || m.Kind != ir.MemberField {
			return false
		}
	default:
		if m == nil {
			return false
		}
	}

	if c.reTypeName != nil && !c.reTypeName.MatchString(sym.Type.FullName()) {
		return false
	}
	name, markers := sym.Type.Name, sym.Type.Markers
	if m != nil {
		name, markers = m.Name, m.Markers
	}
	if c.reName != nil && !c.reName.MatchString(name) {
		return false
	}
	if w.Marker != "" && !ir.HasMarker(markers, w.Marker) {
		return false
	}
	if w.MissingMarker != "" && ir.HasMarker(markers, w.MissingMarker) {
		return false
	}

	// Body conditions need a body.
	if w.MaxLength == nil && w.ThrowsNotImplemented == nil && w.ReturnsConstant == nil && w.MinScore == nil {
		return true
	}
	if m == nil || m.Body == nil {
		return false
	}
	if w.MaxLength != nil && facts.Length > *w.MaxLength {
		return false
	}
	if w.ThrowsNotImplemented != nil && facts.ThrowsNotImplemented != *w.ThrowsNotImplemented {
		return false
	}
	if w.ReturnsConstant != nil && facts.ReturnsConstant != *w.ReturnsConstant {
		return false
	}
	if w.MinScore != nil && facts.Score() < *w.MinScore {
		return false
	}
	return true
}
