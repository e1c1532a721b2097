// Command devapi runs a local stand-in for the remote blog API: posts,
// comments, likes, registration and login on a SQLite file.
//
// Point the client at it with BLOG_API_URL=http://localhost:8000.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/storyblog/internal/config"
	"github.com/sakif/storyblog/internal/server"
)

func main() {
	cfg, err := config.LoadDevAPI()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// os.MkdirAll is a no-op when the directory exists (like `mkdir -p`).
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until Ctrl+C or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
