package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docsift/internal/app"
	"docsift/internal/config"
	"docsift/internal/contextutil"
	"docsift/internal/http"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := contextutil.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	application, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := http.NewRouter(&http.Deps{
		DocumentService: application.DocService,
		DB:              application.DB,
		Stats:           application.Pipeline,
		MaxUploadBytes:  cfg.MaxUploadBytes,
	})

	// Start inbox ingestion in background after router is ready
	application.ScanInbox(ctx)

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting API server", "addr", srv.Addr,
			"chunk_size", cfg.Retrieval.ChunkSize,
			"chunk_overlap", cfg.Retrieval.ChunkOverlap,
			"max_chunks", cfg.Retrieval.MaxChunks,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
	if err := application.Close(); err != nil {
		slog.Error("Failed to close application", "error", err)
	}
}
