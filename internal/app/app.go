// Package app wires configuration, storage, ingestion and the document
// service into one unit shared by the HTTP and MCP entrypoints.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"docsift/internal/config"
	"docsift/internal/contextutil"
	"docsift/internal/extract"
	"docsift/internal/ingest"
	"docsift/internal/service"
	"docsift/internal/storage"
)

// App holds the long-lived components of a running process.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *sql.DB
	Pipeline   *ingest.Pipeline
	DocService service.DocumentService

	scans sync.WaitGroup
}

// New opens the database, runs migrations and builds the ingestion pipeline
// and document service.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Database initialized", "path", cfg.DBPath, "driver", storage.DriverName, "build", storage.BuildMode)

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	pipeline := ingest.NewPipeline(docRepo, chunkRepo, extract.NewRegistry(), ingest.Options{
		ChunkSize:         cfg.Retrieval.ChunkSize,
		ChunkOverlap:      cfg.Retrieval.ChunkOverlap,
		MaxConcurrentJobs: cfg.MaxConcurrentJobs,
	})

	docService := service.NewDocumentService(docRepo, chunkRepo, pipeline, service.Options{
		MaxChunks:      cfg.Retrieval.MaxChunks,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Pipeline:   pipeline,
		DocService: docService,
	}, nil
}

// ScanInbox ingests the configured inbox directory in the background.
// It does nothing when no inbox is configured.
func (a *App) ScanInbox(ctx context.Context) {
	if a.Config.InboxDir == "" {
		return
	}
	ctx = contextutil.WithLogger(ctx, a.Logger)
	a.scans.Add(1)
	go func() {
		defer a.scans.Done()
		a.Logger.Info("Scanning inbox", "dir", a.Config.InboxDir)
		if _, err := a.Pipeline.ScanDir(ctx, a.Config.InboxDir, a.Config.MaxUploadBytes); err != nil {
			a.Logger.Error("Inbox scan completed with errors", "error", err)
		}
	}()
}

// Close waits for inbox scans and in-flight ingestion jobs, then closes
// the database.
func (a *App) Close() error {
	a.scans.Wait()
	a.Pipeline.Wait()
	return a.DB.Close()
}
