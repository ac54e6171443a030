// Package metrics exposes analysis pass counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/codewithboateng/storytest/internal/ir"
)

const namespace = "storytest"

// Collector owns its registry so passes in tests and long-lived processes
// never share state. A nil *Collector is valid and records nothing.
type Collector struct {
	Registry *prometheus.Registry

	symbols      prometheus.Counter
	violations   *prometheus.CounterVec
	ruleFailures *prometheus.CounterVec
	unitsFailed  prometheus.Counter
	passDuration prometheus.Histogram
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Collector{
		Registry: reg,
		symbols: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "symbols_evaluated_total",
			Help:      "Total number of symbols run through the per-symbol rules",
		}),
		violations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Total number of reported violations by rule",
		}, []string{"rule"}),
		ruleFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_failures_total",
			Help:      "Total number of rule evaluations that errored or panicked",
		}, []string{"rule"}),
		unitsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_failed_total",
			Help:      "Total number of units that could not be analyzed",
		}),
		passDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of a full analysis pass in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
	}
}

func (c *Collector) SymbolEvaluated() {
	if c == nil {
		return
	}
	c.symbols.Inc()
}

func (c *Collector) RuleFailed(ruleID string) {
	if c == nil {
		return
	}
	c.ruleFailures.WithLabelValues(ruleID).Inc()
}

func (c *Collector) UnitFailed() {
	if c == nil {
		return
	}
	c.unitsFailed.Inc()
}

// ObservePass records the reported violations and the pass duration.
func (c *Collector) ObservePass(vs []ir.Violation, d time.Duration) {
	if c == nil {
		return
	}
	for _, v := range vs {
		c.violations.WithLabelValues(v.RuleID).Inc()
	}
	c.passDuration.Observe(d.Seconds())
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.Registry)
}
