package api

import (
	"net/http"
)

func (s *Server) handleClassifierStats(w http.ResponseWriter, r *http.Request) {
	if s.model == nil || s.model.Stats == nil {
		jsonError(w, "classifier stats unavailable: no model server configured", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"model":     s.model.Model(),
		"threshold": s.cfg.Threshold,
		"stats":     s.model.Stats.Snapshot(),
	})
}
