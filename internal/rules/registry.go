package rules

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrDuplicateRule = errors.New("rule already registered")

// Registry holds rules in registration order. The zero value is not usable;
// call NewRegistry.
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
	index map[string]int // UPPER(ruleID) -> index
}

func NewRegistry() *Registry {
	return &Registry{index: map[string]int{}}
}

func normID(id string) string { return strings.ToUpper(strings.TrimSpace(id)) }

func (r *Registry) Register(rule Rule) error {
	id := normID(rule.ID)
	if id == "" {
		return errors.New("rule id is empty")
	}
	if rule.Eval == nil {
		return fmt.Errorf("rule %s: no Eval func", id)
	}
	rule.ID = id
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[id]; ok {
		return fmt.Errorf("%s: %w", id, ErrDuplicateRule)
	}
	r.rules = append(r.rules, rule)
	r.index[id] = len(r.rules) - 1
	return nil
}

func (r *Registry) MustRegister(rule Rule) {
	if err := r.Register(rule); err != nil {
		panic(err)
	}
}

// Clear drops every rule.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.rules = nil
	r.index = map[string]int{}
	r.mu.Unlock()
}

// IDs returns rule ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.rules))
	for i, rule := range r.rules {
		out[i] = rule.ID
	}
	return out
}

func (r *Registry) List() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Rule(nil), r.rules...)
}

// Get returns a rule by ID if registered (used by the HTML report and the API to show docs).
func (r *Registry) Get(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.index[normID(id)]
	if !ok {
		return Rule{}, false
	}
	return r.rules[idx], true
}

// Active returns the rules a pass with these settings runs: disabled rules
// removed, opt-in rules kept only when enabled.
func (r *Registry) Active(s Settings) []Rule {
	var out []Rule
	for _, rule := range r.List() {
		if s.Disabled[rule.ID] {
			continue
		}
		if rule.OptIn && !s.Enabled[rule.ID] {
			continue
		}
		out = append(out, rule)
	}
	return out
}
