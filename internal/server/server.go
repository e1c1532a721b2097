// Package server wires the development API: database, services, handlers,
// middleware and routes.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.DevAPI → sqlite.DB → PostService / AuthService → handlers → chi routes
//
// All wiring happens in New; every other package receives its dependencies
// as arguments. This is the "composition root".
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/storyblog/internal/auth"
	"github.com/sakif/storyblog/internal/config"
	"github.com/sakif/storyblog/internal/handler"
	"github.com/sakif/storyblog/internal/middleware"
	sqliteRepo "github.com/sakif/storyblog/internal/repository/sqlite"
	"github.com/sakif/storyblog/internal/service"
	"github.com/sakif/storyblog/internal/validation"
)

// Server is the development API and the resources it owns.
type Server struct {
	router *chi.Mux
	config config.DevAPI
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and builds the router.
//
// We import repository/sqlite as sqliteRepo so it isn't confused with the
// driver package.
func New(cfg config.DevAPI, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens)
	return s, nil
}

// setupRoutes registers middleware and endpoints.
//
// ROUTES:
//
//	GET    /healthz                → liveness + DB ping
//	GET    /posts?q=               → list (newest first)
//	POST   /posts                  → create
//	GET    /posts/{id}             → get
//	PUT    /posts/{id}             → full replacement
//	DELETE /posts/{id}             → delete (cascades comments)
//	POST   /posts/{id}/comments    → append comment
//	POST   /posts/{id}/like        → +1
//	POST   /register               → JSON credentials
//	POST   /login                  → form-encoded credentials → token
//
// Middleware order: RequestID first so the logger can print it, Recoverer
// inside the logger so panics are logged as 500s.
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	s.router.Use(auth.OptionalAuth(tokens))

	validate := validation.New()
	posts := handler.NewPostHandler(service.NewPostService(s.db, validate, s.logger), s.logger)
	accounts := handler.NewAuthHandler(
		service.NewAuthService(s.db, tokens, auth.NewPasswordService(), validate, s.logger),
		s.logger,
	)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/posts", func(r chi.Router) {
		r.Get("/", posts.HandleList)
		r.Post("/", posts.HandleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", posts.HandleGet)
			r.Put("/", posts.HandleUpdate)
			r.Delete("/", posts.HandleDelete)
			r.Post("/comments", posts.HandleAddComment)
			r.Post("/like", posts.HandleLike)
		})
	})

	s.router.Post("/register", accounts.HandleRegister)
	s.router.Post("/login", accounts.HandleLogin)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT/SIGTERM, then shuts down and closes the
// database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info("devapi starting",
		slog.Int("port", s.config.Port),
		slog.String("database", s.config.DBPath),
	)
	return Serve(srv, s.logger)
}
