// Command client runs the blog client locally: open http://localhost:3000
// in a browser. Pages are rendered here; all posts and accounts live in the
// remote blog API at BLOG_API_URL. The login session is kept in a small
// SQLite file so it survives restarts.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/storyblog/internal/blogapi"
	"github.com/sakif/storyblog/internal/config"
	"github.com/sakif/storyblog/internal/server"
	"github.com/sakif/storyblog/internal/session"
	"github.com/sakif/storyblog/internal/shell"
	"github.com/sakif/storyblog/internal/validation"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("client stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Client, logger *slog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.SessionDBPath), 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	backend, err := session.OpenSQLite(cfg.SessionDBPath)
	if err != nil {
		return err
	}
	defer backend.Close()

	sessions := session.NewStore(backend, logger)
	unwatch := sessions.Watch(func(s session.Session) {
		logger.Debug("session changed", slog.Bool("logged_in", s.Authenticated()))
	})
	defer unwatch()

	api, err := blogapi.New(cfg.BlogAPIURL, logger, blogapi.WithSession(sessions))
	if err != nil {
		return err
	}

	sh, err := shell.New(shell.Deps{
		Posts:    api,
		Accounts: api,
		Sessions: sessions,
		Validate: validation.New(),
	}, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.Port),
		Handler:           sh.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger.Info("client starting",
		slog.String("url", fmt.Sprintf("http://localhost:%d", cfg.Port)),
		slog.String("api", cfg.BlogAPIURL),
		slog.String("session", cfg.SessionDBPath),
	)
	return server.Serve(srv, logger)
}
