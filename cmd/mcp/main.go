package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"docsift/internal/app"
	"docsift/internal/config"
	"docsift/internal/contextutil"
	"docsift/internal/mcp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// stdout carries the MCP protocol, so logs go to stderr
	logger := contextutil.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	application, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			slog.Error("Failed to close application", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application.ScanInbox(ctx)

	slog.Info("Starting MCP server on stdio", "name", mcp.ServerName, "version", mcp.ServerVersion)
	if err := mcp.NewServer(application.DocService).Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("MCP server stopped", "error", err)
	}
	slog.Info("Shutting down")
}
