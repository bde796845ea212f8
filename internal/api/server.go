package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/candgest/internal/classify"
	"github.com/dgallion1/candgest/internal/config"
	"github.com/dgallion1/candgest/internal/pipeline"
)

// Server is the HTTP API server for candgest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	model        *classify.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. model may be nil when
// extraction runs on heuristics only.
func NewServer(orch *pipeline.Orchestrator, model *classify.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		model:        model,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey))

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/extract/batch", s.handleBatchExtract)
		r.Get("/api/extract/{jobID}/status", s.handleExtractStatus)
		r.Get("/api/extract/{jobID}/result", s.handleExtractResult)

		r.Get("/api/runs", s.handleListRuns)
		r.Get("/api/runs/{runID}/records", s.handleRunRecords)
		r.Delete("/api/runs/{runID}", s.handleDeleteRun)

		r.Get("/api/stats/classifier", s.handleClassifierStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
