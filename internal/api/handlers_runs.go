package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/candgest/internal/store"
)

// handleListRuns lists stored runs, newest first, optionally for one unit.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			jsonError(w, "limit must be between 1 and 1000", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.orchestrator.Runs().ListRuns(r.Context(), r.URL.Query().Get("unit_code"), limit)
	if err != nil {
		jsonError(w, "failed to list runs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleRunRecords returns the candidate records of one run.
func (s *Server) handleRunRecords(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	recs, err := s.orchestrator.Runs().Records(r.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read records: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "records": recs})
}

// handleDeleteRun deletes a run's history and its CSV file. Jobs that still
// point at the file answer 404 on their result afterwards.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	runs := s.orchestrator.Runs()

	run, err := runs.GetRun(r.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read run: "+err.Error(), http.StatusInternalServerError)
		return
	}

	err = runs.DeleteRun(r.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete run: "+err.Error(), http.StatusInternalServerError)
		return
	}

	fileRemoved := false
	if run.OutputPath != "" {
		switch err := os.Remove(run.OutputPath); {
		case err == nil:
			fileRemoved = true
		case !errors.Is(err, fs.ErrNotExist):
			s.log.Warn("remove run output", "run_id", runID, "path", run.OutputPath, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "deleted": true, "file_removed": fileRemoved})
}
