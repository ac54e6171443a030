package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/storytest/internal/ir"
)

func TestCollector(t *testing.T) {
	c := New()
	c.SymbolEvaluated()
	c.SymbolEvaluated()
	c.UnitFailed()
	c.RuleFailed("BOOM")
	c.ObservePass([]ir.Violation{
		{RuleID: "COLD-METHOD"}, {RuleID: "COLD-METHOD"}, {RuleID: "DEAD-CODE"},
	}, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.symbols))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.unitsFailed))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.violations.WithLabelValues("COLD-METHOD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ruleFailures.WithLabelValues("BOOM")))

	want := `
# HELP storytest_units_failed_total Total number of units that could not be analyzed
# TYPE storytest_units_failed_total counter
storytest_units_failed_total 1
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry, strings.NewReader(want), "storytest_units_failed_total"))

	path := filepath.Join(t.TempDir(), "storytest.prom")
	require.NoError(t, c.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `storytest_violations_total{rule="DEAD-CODE"} 1`)
	assert.Contains(t, string(b), "storytest_pass_duration_seconds_count 1")
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.SymbolEvaluated()
		c.UnitFailed()
		c.RuleFailed("X")
		c.ObservePass(nil, time.Second)
	})
}
