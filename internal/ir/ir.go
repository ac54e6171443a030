package ir

import (
	"strconv"
	"time"
)

const Version = "1.0"

// Run is the persisted record of one analysis pass.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source,omitempty"`
	IRVersion string    `json:"ir_version,omitempty"`

	Context    Context     `json:"context"`
	Violations []Violation `json:"violations"`
}

type Context struct {
	Units             []string `json:"units,omitempty"`
	SeverityThreshold string   `json:"severity_threshold,omitempty"`
	DisabledRules     []string `json:"disabled_rules,omitempty"`
	EnabledRules      []string `json:"enabled_rules,omitempty"`
}

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Rank orders severities; unknown values rank as LOW.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// Kind is the violation category.
type Kind string

const (
	KindIncompleteImplementation Kind = "IncompleteImplementation"
	KindDebuggingCode            Kind = "DebuggingCode"
	KindUnusedCode               Kind = "UnusedCode"
	KindPrematureCelebration     Kind = "PrematureCelebration"
	KindOther                    Kind = "Other"
)

// Violation is one flagged (symbol, rule) pair. Member is empty for type-level findings.
type Violation struct {
	Unit   string `json:"unit"`
	Type   string `json:"type"`
	Member string `json:"member,omitempty"`
	// Token is the member's metadata token. It tells overloads apart.
	Token    uint32   `json:"token,omitempty"`
	RuleID   string   `json:"rule"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	// Source names the rule a RULE-FAILURE diagnostic is about.
	Source string `json:"source,omitempty"`
}

// Path renders Type.Member, or just Type.
func (v Violation) Path() string {
	if v.Member == "" {
		return v.Type
	}
	return v.Type + "." + v.Member
}

// Key identifies the (symbol, rule) pair a violation belongs to.
func (v Violation) Key() string {
	k := v.Unit + "|" + v.Type + "|" + v.Member
	if v.Token != 0 {
		k += "#" + strconv.FormatUint(uint64(v.Token), 16)
	}
	k += "|" + v.RuleID
	if v.Source != "" {
		k += "|" + v.Source
	}
	return k
}
