package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codewithboateng/storytest/internal/ir"
)

type DiffPayload struct {
	BaseID  string       `json:"base_id"`
	HeadID  string       `json:"head_id"`
	Summary DiffSummary  `json:"summary"`
	New     []DiffEntry  `json:"new"`
	Removed []DiffEntry  `json:"removed"`
	Changed []DiffChange `json:"changed"`
}

type DiffSummary struct {
	NewCount     int `json:"new"`
	RemovedCount int `json:"removed"`
	ChangedCount int `json:"changed"`
}

type DiffEntry struct {
	Key      string      `json:"key"`
	RuleID   string      `json:"rule"`
	Unit     string      `json:"unit"`
	Path     string      `json:"path"`
	Severity ir.Severity `json:"severity,omitempty"`
	Message  string      `json:"message,omitempty"`
}

type DiffChange struct {
	Key     string    `json:"key"`
	Base    DiffEntry `json:"base"`
	Head    DiffEntry `json:"head"`
	Changed []string  `json:"fields_changed"`
}

// Diff compares two runs by (symbol, rule).
func Diff(baseID, headID string, base, head *ir.Run) DiffPayload {
	bm := map[string]ir.Violation{}
	hm := map[string]ir.Violation{}
	for _, v := range base.Violations {
		bm[v.Key()] = v
	}
	for _, v := range head.Violations {
		hm[v.Key()] = v
	}

	added := []DiffEntry{}
	removed := []DiffEntry{}
	changed := []DiffChange{}

	// additions & changes
	for k, hv := range hm {
		bv, ok := bm[k]
		if !ok {
			added = append(added, asDiff(hv))
			continue
		}
		var fields []string
		if bv.Severity != hv.Severity {
			fields = append(fields, "severity")
		}
		if bv.Kind != hv.Kind {
			fields = append(fields, "kind")
		}
		if strings.TrimSpace(bv.Message) != strings.TrimSpace(hv.Message) {
			fields = append(fields, "message")
		}
		if len(fields) > 0 {
			changed = append(changed, DiffChange{Key: k, Base: asDiff(bv), Head: asDiff(hv), Changed: fields})
		}
	}
	// removals
	for k, bv := range bm {
		if _, ok := hm[k]; !ok {
			removed = append(removed, asDiff(bv))
		}
	}

	sort.Slice(added, func(i, j int) bool { return added[i].Key < added[j].Key })
	sort.Slice(removed, func(i, j int) bool { return removed[i].Key < removed[j].Key })
	sort.Slice(changed, func(i, j int) bool { return changed[i].Key < changed[j].Key })

	return DiffPayload{
		BaseID: baseID, HeadID: headID,
		Summary: DiffSummary{
			NewCount:     len(added),
			RemovedCount: len(removed),
			ChangedCount: len(changed),
		},
		New:     added,
		Removed: removed,
		Changed: changed,
	}
}

func WriteDiffJSON(baseID, headID, outDir string, base, head *ir.Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, "diff_"+baseID+"__"+headID+".json")
	b, err := json.MarshalIndent(Diff(baseID, headID, base, head), "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0o644)
}

func asDiff(v ir.Violation) DiffEntry {
	return DiffEntry{
		Key:      v.Key(),
		RuleID:   v.RuleID,
		Unit:     v.Unit,
		Path:     v.Path(),
		Severity: v.Severity,
		Message:  v.Message,
	}
}
