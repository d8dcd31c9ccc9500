package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"toggl-mcp/internal/app"
	"toggl-mcp/internal/config"
)

func main() {
	// Flags
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	// Logger. Stdout carries the stdio transport, so logs go to stderr.
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// App
	application, err := app.New(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to initialize app", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("serving MCP over stdio")
	if err := application.Serve(); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
