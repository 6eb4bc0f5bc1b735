package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"

	"segmark/internal/api"
	"segmark/internal/config"
	"segmark/internal/kb"
	"segmark/internal/ocr"
	"segmark/internal/pipeline"
	"segmark/internal/splitter"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	kbc := kb.NewClient(cfg.KBBaseURL, cfg.KBAPIKey)
	var ocrc *ocr.Client
	if cfg.OCREnabled {
		ocrc = ocr.NewClient(cfg.OCRBaseURL, cfg.OCRAPIKey, cfg.OCRModelVersion)
	}

	// Build the split pipeline. The detector loads segmentation models
	// once here and is shared by all workers.
	det, err := splitter.NewDetector(cfg.SentenceCacheSize)
	if err != nil {
		log.Error("sentence detector init failed", "error", err)
		os.Exit(1)
	}
	sp, err := splitter.New(cfg.Split, det)
	if err != nil {
		log.Error("invalid split config", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, kbc, ocrc, sp, log)
	if err := orch.Start(ctx); err != nil {
		log.Error("pipeline start failed", "error", err)
		os.Exit(1)
	}

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

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

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		kbc.Close()
		if ocrc != nil {
			ocrc.Close()
		}
	}()

	log.Info("starting segmark", "port", cfg.Port, "dataset", cfg.KBDatasetName)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
