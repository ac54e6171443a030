package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/storytest/internal/ir"
	"github.com/codewithboateng/storytest/internal/rules"
)

const sampleConfig = `
database:
  dsn: ./data/story.db
analysis:
  sources: [./build/manifests]
  include: ["Game*"]
  exclude: ["*.Tests"]
  workers: 2
rules:
  disabled: [dead-code]
  enabled: [no-log-in-release]
  severity_threshold: medium
  naming:
    debug_patterns: ["Dbg*"]
    exemption_marker: SkipStory
  entry_points:
    public_api: false
    names: [Main]
reporting:
  formats: [html]
metrics:
  textfile: ./metrics/storytest.prom
`

func TestLoadConfig_Layers(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "storytest.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(sampleConfig), 0o644))
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("STORYTEST_OUT_DIR=/tmp/from-dotenv\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("STORYTEST_OUT_DIR") })
	t.Setenv("STORYTEST_WORKERS", "8")
	t.Setenv("STORYTEST_LOG_LEVEL", "debug")

	c, err := LoadConfig(cfgPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, "./data/story.db", c.Database.DSN)
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.Equal(t, 8, c.Analysis.Workers)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, "/tmp/from-dotenv", c.Reporting.OutDir)
	assert.Equal(t, []string{"html"}, c.Reporting.Formats)
	assert.Equal(t, "./metrics/storytest.prom", c.Metrics.Textfile)
	assert.Equal(t, ":8080", c.Server.Addr)

	s := c.RuleSettings()
	assert.Equal(t, ir.SeverityMedium, s.SeverityThreshold)
	assert.True(t, s.Disabled["DEAD-CODE"])
	assert.True(t, s.Enabled["NO-LOG-IN-RELEASE"])
	assert.Equal(t, []string{"Dbg*"}, s.Naming.DebugPatterns)
	assert.Equal(t, "SkipStory", s.Naming.ExemptionMarker)
	assert.Equal(t, rules.DefaultNaming().PlaceholderNames, s.Naming.PlaceholderNames)
	assert.False(t, s.EntryPoints.PublicAPI)
	assert.Equal(t, []string{"Main"}, s.EntryPoints.Names)

	f, err := c.Filter()
	require.NoError(t, err)
	assert.True(t, f.Units("Game.dll"))
	assert.False(t, f.Units("Game.Tests"))
	assert.False(t, f.Units("Tools.dll"))
}

func TestLoadConfig_Defaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)

	s := c.RuleSettings()
	assert.True(t, s.EntryPoints.PublicAPI)
	assert.Equal(t, ir.SeverityLow, s.SeverityThreshold)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("analysis: [\n"), 0o644))
	_, err := LoadConfig(p, filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestConfig_BadUnitPattern(t *testing.T) {
	c := DefaultConfig()
	c.Analysis.Include = []string{"Game["}
	_, err := c.Filter()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "text", "warn")
	log.Info("hidden")
	log.Warn("shown", "unit", "Game.dll")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "unit=Game.dll")

	buf.Reset()
	NewLogger(&buf, "json", "debug").Debug("decoded", "symbols", 3)
	assert.Contains(t, buf.String(), `"symbols":3`)
}
