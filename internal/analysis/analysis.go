// Package analysis drives one pass: enumerate, decode, per-symbol rules in
// parallel, whole-set rules, aggregate.
package analysis

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/il"
	"github.com/codewithboateng/storytest/internal/ir"
	"github.com/codewithboateng/storytest/internal/metrics"
	"github.com/codewithboateng/storytest/internal/reporting"
	"github.com/codewithboateng/storytest/internal/rules"
)

type Options struct {
	Registry *rules.Registry
	Settings rules.Settings
	Filter   enumerate.Filter
	// Workers bounds parallel symbol evaluation; <= 0 means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// Run analyzes units and returns the report. It fails only when ctx is
// cancelled or no registry is given; everything else ends up in the report.
func Run(ctx context.Context, units []*ir.Unit, opts Options) (*reporting.Report, error) {
	if opts.Registry == nil {
		return nil, errors.New("analysis: nil rule registry")
	}
	start := time.Now()
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	settings := opts.Settings.Normalize()

	var symbolRules, setRules []rules.Rule
	for _, r := range opts.Registry.Active(settings) {
		if r.Stage == rules.StageSet {
			setRules = append(setRules, r)
		} else {
			symbolRules = append(symbolRules, r)
		}
	}

	admitted := make([]*ir.Unit, 0, len(units))
	for _, u := range units {
		if opts.Filter.Admits(u) {
			admitted = append(admitted, u)
		} else {
			log.Debug("unit skipped", "unit", u.Name)
		}
	}

	env := rules.NewEnv(admitted, settings)
	s := &sink{log: log, metrics: opts.Metrics}
	var symbols atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for e := range enumerate.Walk(admitted, opts.Filter) {
		if ctx.Err() != nil {
			break
		}
		if e.Diagnostic != nil {
			s.diagnostic(*e.Diagnostic)
			continue
		}
		sym := e.Symbol
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			facts := factsOf(sym)
			for _, r := range symbolRules {
				s.add(rules.Apply(r, env, sym, facts))
			}
			symbols.Add(1)
			opts.Metrics.SymbolEvaluated()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The set stage needs every body decoded, so it runs after the fan-out.
	if len(setRules) > 0 {
		env.Refs = rules.BuildReferenceIndex(admitted)
		for e := range enumerate.Walk(admitted, opts.Filter) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if e.Diagnostic != nil {
				continue
			}
			facts := factsOf(e.Symbol)
			for _, r := range setRules {
				s.add(rules.Apply(r, env, e.Symbol, facts))
			}
		}
	}

	kept := s.vs[:0]
	for _, v := range s.vs {
		if isDiagnostic(v.RuleID) || settings.SeverityOK(v.Severity) {
			kept = append(kept, v)
		}
	}

	rep := reporting.Aggregate(kept, reporting.WithRuleOrder(RuleOrder(opts.Registry)))
	elapsed := time.Since(start)
	opts.Metrics.ObservePass(rep.Violations, elapsed)
	log.Info("analysis complete",
		"units", len(admitted),
		"symbols", symbols.Load(),
		"violations", rep.Summary.Total,
		"duration", elapsed,
	)
	return rep, nil
}

// RuleOrder is the report order: walk diagnostics, registered rules, rule failures.
func RuleOrder(reg *rules.Registry) []string {
	order := []string{enumerate.RuleUnitNotAnalyzable, enumerate.RuleInvalidExemption}
	order = append(order, reg.IDs()...)
	return append(order, rules.RuleFailure)
}

func isDiagnostic(ruleID string) bool {
	switch ruleID {
	case enumerate.RuleUnitNotAnalyzable, enumerate.RuleInvalidExemption, rules.RuleFailure:
		return true
	}
	return false
}

func factsOf(sym enumerate.Symbol) il.Facts {
	if sym.Member == nil {
		return il.Facts{}
	}
	f, _ := sym.Member.Facts()
	return f
}

type sink struct {
	mu      sync.Mutex
	vs      []ir.Violation
	log     *slog.Logger
	metrics *metrics.Collector
}

func (s *sink) add(v *ir.Violation) {
	if v == nil {
		return
	}
	if v.RuleID == rules.RuleFailure {
		s.log.Warn("rule failed", "rule", v.Source, "unit", v.Unit, "symbol", v.Path(), "error", v.Message)
		s.metrics.RuleFailed(v.Source)
	}
	s.mu.Lock()
	s.vs = append(s.vs, *v)
	s.mu.Unlock()
}

func (s *sink) diagnostic(v ir.Violation) {
	switch v.RuleID {
	case enumerate.RuleUnitNotAnalyzable:
		s.log.Warn("unit not analyzable", "unit", v.Unit, "error", v.Message)
		s.metrics.UnitFailed()
	case enumerate.RuleInvalidExemption:
		s.log.Debug("invalid exemption", "unit", v.Unit, "symbol", v.Path())
	}
	s.mu.Lock()
	s.vs = append(s.vs, v)
	s.mu.Unlock()
}
