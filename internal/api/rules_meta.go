package api

import (
	"net/http"

	"github.com/codewithboateng/storytest/internal/rules"
)

// GET /api/v1/rules lists registered rules in report order.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	type R struct {
		ID              string `json:"id"`
		Summary         string `json:"summary"`
		Kind            string `json:"kind"`
		DefaultSeverity string `json:"default_severity"`
		Stage           string `json:"stage"`
		OptIn           bool   `json:"opt_in"`
		Docs            string `json:"docs,omitempty"`
	}
	out := []R{}
	if s.Rules != nil {
		for _, rr := range s.Rules.List() {
			stage := "symbol"
			if rr.Stage == rules.StageSet {
				stage = "set"
			}
			out = append(out, R{
				ID: rr.ID, Summary: rr.Summary, Kind: string(rr.Kind),
				DefaultSeverity: string(rr.DefaultSeverity), Stage: stage,
				OptIn: rr.OptIn, Docs: rr.Docs,
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}
