package rules

import (
	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
)

// Stage says when a rule can run. StageSet rules need the reference index,
// which exists only after every body in the set was decoded.
type Stage int

const (
	StageSymbol Stage = iota
	StageSet
)

// Rule is one named detection heuristic.
type Rule struct {
	ID              string
	Summary         string
	Kind            ir.Kind
	DefaultSeverity ir.Severity
	Stage           Stage
	// OptIn rules run only when listed in Settings.Enabled.
	OptIn bool
	Docs  string
	// Eval inspects one symbol and returns at most one violation. It must not
	// mutate anything it is given. Location, rule id, kind and severity are
	// filled by the engine when left empty.
	Eval func(env *Env, sym enumerate.Symbol, facts il.Facts) (*ir.Violation, error)
}

// Env is the read-only context shared by all rule evaluations of a pass.
type Env struct {
	Settings Settings
	// Types indexes every loaded type by full name, across units.
	Types map[string]*ir.Type
	// Refs is nil until the set stage.
	Refs *ReferenceIndex
}

func NewEnv(units []*ir.Unit, s Settings) *Env {
	env := &Env{Settings: s, Types: map[string]*ir.Type{}}
	for _, u := range units {
		for _, t := range u.Types {
			if _, dup := env.Types[t.FullName()]; !dup {
				env.Types[t.FullName()] = t
			}
		}
	}
	return env
}

// BaseOf resolves t's base class inside the loaded set.
func (e *Env) BaseOf(t *ir.Type) *ir.Type {
	if t.BaseType == "" {
		return nil
	}
	return e.Types[t.BaseType]
}
