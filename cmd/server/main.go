package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/candgest/internal/api"
	"github.com/dgallion1/candgest/internal/config"
	"github.com/dgallion1/candgest/internal/pipeline"
	"github.com/dgallion1/candgest/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage and extraction.
	runs, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error("open run store", "error", err)
		os.Exit(1)
	}
	proc, model, err := pipeline.Build(cfg, log)
	if err != nil {
		log.Error("build extractor", "error", err)
		os.Exit(1)
	}
	if model == nil {
		log.Warn("MODEL_URL not set, extracting with textual heuristics only")
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
		DataDir:      cfg.DataDir,
		Parser:       pipeline.ParserOptions(cfg),
	}, proc, runs, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, model, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if model != nil {
			model.Close()
		}
		runs.Close()
	}()

	log.Info("starting candgest", "port", cfg.Port, "threshold", cfg.Threshold, "model_url", cfg.ModelURL)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
