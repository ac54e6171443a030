package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/codewithboateng/storytest/internal/enumerate"
	"github.com/codewithboateng/storytest/internal/ir"
	"github.com/codewithboateng/storytest/internal/rules"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./storytest.db"
	} `yaml:"database"`

	Analysis struct {
		Sources      []string `yaml:"sources"` // manifest files or directories
		Include      []string `yaml:"include"` // unit name patterns
		Exclude      []string `yaml:"exclude"`
		Workers      int      `yaml:"workers"` // 0 = GOMAXPROCS
		HostRuntime  bool     `yaml:"host_runtime"`
		HostPrefixes []string `yaml:"host_prefixes"`
	} `yaml:"analysis"`

	Rules struct {
		Disabled          []string `yaml:"disabled"`
		Enabled           []string `yaml:"enabled"` // opt-in rules to run
		SeverityThreshold string   `yaml:"severity_threshold"`
		Packs             []string `yaml:"packs"`

		Naming struct {
			DebugPatterns     []string `yaml:"debug_patterns"`
			PhantomPatterns   []string `yaml:"phantom_patterns"`
			PlaceholderNames  []string `yaml:"placeholder_names"`
			CompletionMarkers []string `yaml:"completion_markers"`
			TemporaryMarkers  []string `yaml:"temporary_markers"`
			ExemptionMarker   string   `yaml:"exemption_marker"`
		} `yaml:"naming"`

		EntryPoints struct {
			PublicAPI *bool    `yaml:"public_api"`
			Names     []string `yaml:"names"`
			Markers   []string `yaml:"markers"`
		} `yaml:"entry_points"`
	} `yaml:"rules"`

	Reporting struct {
		OutDir  string   `yaml:"out_dir"` // "./reports"
		Formats []string `yaml:"formats"` // json|text|html
	} `yaml:"reporting"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`

	Metrics struct {
		Textfile string `yaml:"textfile"` // node-exporter textfile path; empty disables
	} `yaml:"metrics"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./storytest.db"
	c.Analysis.HostPrefixes = []string{"UnityEngine", "UnityEditor"}
	c.Rules.SeverityThreshold = string(ir.SeverityLow)
	c.Reporting.OutDir = "./reports"
	c.Reporting.Formats = []string{"json", "text"}
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	c.Server.Addr = ":8080"
	return c
}

// LoadConfig layers defaults, .env files, the YAML file at path and
// STORYTEST_* environment overrides. A missing file or .env is not an error.
func LoadConfig(path string, envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	c := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if v := os.Getenv("STORYTEST_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("STORYTEST_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("STORYTEST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("STORYTEST_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("STORYTEST_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.Workers = n
		}
	}
	if v := os.Getenv("STORYTEST_SEVERITY_THRESHOLD"); v != "" {
		c.Rules.SeverityThreshold = v
	}
	return c, nil
}

// RuleSettings converts the rules section. Empty lists fall back to the
// rule engine defaults.
func (c Config) RuleSettings() rules.Settings {
	r := c.Rules
	s := rules.Settings{
		SeverityThreshold: ir.Severity(strings.ToUpper(r.SeverityThreshold)),
		Disabled:          set(r.Disabled),
		Enabled:           set(r.Enabled),
		Naming: rules.Naming{
			DebugPatterns:     r.Naming.DebugPatterns,
			PhantomPatterns:   r.Naming.PhantomPatterns,
			PlaceholderNames:  r.Naming.PlaceholderNames,
			CompletionMarkers: r.Naming.CompletionMarkers,
			TemporaryMarkers:  r.Naming.TemporaryMarkers,
			ExemptionMarker:   r.Naming.ExemptionMarker,
		},
		EntryPoints: rules.EntryPoints{
			PublicAPI: true,
			Names:     r.EntryPoints.Names,
			Markers:   r.EntryPoints.Markers,
		},
	}
	if r.EntryPoints.PublicAPI != nil {
		s.EntryPoints.PublicAPI = *r.EntryPoints.PublicAPI
	}
	return s.Normalize()
}

// Filter builds the unit filter from the analysis section.
func (c Config) Filter() (enumerate.Filter, error) {
	units, err := enumerate.NameFilter(c.Analysis.Include, c.Analysis.Exclude)
	if err != nil {
		return enumerate.Filter{}, err
	}
	return enumerate.Filter{
		Units: units,
		Capabilities: enumerate.Capabilities{
			HostRuntime:  c.Analysis.HostRuntime,
			HostPrefixes: c.Analysis.HostPrefixes,
		},
	}, nil
}

func set(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
