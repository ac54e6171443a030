package rules

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codewithboateng/storytest/internal/ir"
)

type Settings struct {
	SeverityThreshold ir.Severity
	Disabled          map[string]bool
	Enabled           map[string]bool
	Naming            Naming
	EntryPoints       EntryPoints
}

// Naming holds the name and marker conventions rules match against.
// Name patterns are doublestar globs matched case-sensitively against member
// names; marker patterns are matched against normalized attribute names.
type Naming struct {
	DebugPatterns     []string
	PhantomPatterns   []string
	PlaceholderNames  []string
	CompletionMarkers []string
	TemporaryMarkers  []string
	ExemptionMarker   string
}

// EntryPoints is the policy deciding which unreferenced members are still
// reachable from outside the analyzed set.
type EntryPoints struct {
	PublicAPI bool
	Names     []string
	Markers   []string
}

func DefaultSettings() Settings {
	return Settings{
		SeverityThreshold: ir.SeverityLow,
		Disabled:          map[string]bool{},
		Enabled:           map[string]bool{},
		Naming:            DefaultNaming(),
		EntryPoints:       DefaultEntryPoints(),
	}
}

func DefaultNaming() Naming {
	return Naming{
		DebugPatterns:     []string{"Debug*", "Test*", "*Temp*"},
		PhantomPatterns:   []string{"*Unused*", "*Placeholder*"},
		PlaceholderNames:  []string{"none", "default", "todo", "temp", "placeholder", "unknown"},
		CompletionMarkers: []string{"*complete*", "*finished*", "*done*"},
		TemporaryMarkers:  []string{"obsolete", "temporary", "conditional"},
		ExemptionMarker:   "StoryIgnore",
	}
}

func DefaultEntryPoints() EntryPoints {
	return EntryPoints{
		PublicAPI: true,
		Names: []string{
			"Main", "On*", "Handle*", "*Handler",
			// host engine callbacks
			"Awake", "Start", "Update", "FixedUpdate", "LateUpdate",
		},
		Markers: []string{"RuntimeInitializeOnLoadMethod", "MenuItem", "SerializeField", "ContextMenu"},
	}
}

// Normalize fills empty fields from the defaults and upper-cases rule ids.
// EntryPoints.PublicAPI is taken as given.
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if s.SeverityThreshold == "" {
		s.SeverityThreshold = d.SeverityThreshold
	}
	s.SeverityThreshold = ir.Severity(strings.ToUpper(string(s.SeverityThreshold)))
	s.Disabled = upperKeys(s.Disabled)
	s.Enabled = upperKeys(s.Enabled)

	n := &s.Naming
	if n.DebugPatterns == nil {
		n.DebugPatterns = d.Naming.DebugPatterns
	}
	if n.PhantomPatterns == nil {
		n.PhantomPatterns = d.Naming.PhantomPatterns
	}
	if n.PlaceholderNames == nil {
		n.PlaceholderNames = d.Naming.PlaceholderNames
	}
	if n.CompletionMarkers == nil {
		n.CompletionMarkers = d.Naming.CompletionMarkers
	}
	if n.TemporaryMarkers == nil {
		n.TemporaryMarkers = d.Naming.TemporaryMarkers
	}
	if n.ExemptionMarker == "" {
		n.ExemptionMarker = d.Naming.ExemptionMarker
	}
	if s.EntryPoints.Names == nil {
		s.EntryPoints.Names = d.EntryPoints.Names
	}
	if s.EntryPoints.Markers == nil {
		s.EntryPoints.Markers = d.EntryPoints.Markers
	}
	return s
}

// SeverityOK reports whether sev clears the threshold.
func (s Settings) SeverityOK(sev ir.Severity) bool {
	return sev.Rank() >= s.SeverityThreshold.Rank()
}

func upperKeys(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[normID(k)] = v
	}
	return out
}

// MatchName reports whether name matches any glob.
func MatchName(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// MatchMarker reports whether any marker matches any pattern, comparing
// normalized attribute names.
func MatchMarker(patterns, markers []string) bool {
	for _, m := range markers {
		name := ir.MarkerName(m)
		for _, p := range patterns {
			if ok, _ := doublestar.Match(ir.MarkerName(p), name); ok {
				return true
			}
		}
	}
	return false
}

// IsPlaceholderName matches the placeholder vocabulary, ignoring case.
func (n Naming) IsPlaceholderName(name string) bool {
	for _, p := range n.PlaceholderNames {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}
