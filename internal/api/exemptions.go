package api

import "net/http"

// GET /api/v1/exemptions?active=true
func (s *Server) handleListExemptions(w http.ResponseWriter, r *http.Request) {
	active := r.URL.Query().Get("active")
	only := active == "1" || active == "true" || active == "yes"
	items, err := s.DB.ListExemptions(only)
	if err != nil {
		s.dbErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "active_only": only})
}
