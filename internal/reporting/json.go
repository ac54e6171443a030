package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/codewithboateng/storytest/internal/ir"
)

// Document is what WriteJSON puts on disk: run metadata plus the structured report.
type Document struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	Source    string     `json:"source,omitempty"`
	IRVersion string     `json:"ir_version,omitempty"`
	Context   ir.Context `json:"context"`
	Report    Structured `json:"report"`
}

func NewDocument(run *ir.Run, rep *Report) Document {
	return Document{
		ID:        run.ID,
		StartedAt: run.StartedAt,
		Source:    run.Source,
		IRVersion: run.IRVersion,
		Context:   run.Context,
		Report:    rep.Structured(),
	}
}

func WriteJSON(runID, outDir string, run *ir.Run, rep *Report) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, runID+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(run, rep)); err != nil {
		return "", err
	}
	return path, nil
}

func WriteText(runID, outDir string, rep *Report) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, runID+".txt")
	return path, os.WriteFile(path, []byte(rep.Text()), 0o644)
}
