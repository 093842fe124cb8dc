// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where the full
// dependency chain is assembled:
//
//	sqlite.DB → services (auth, user, event) → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, and nothing below the handler layer
// ever sees HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/neonkn1ght/calendar-api/internal/auth"
	"github.com/neonkn1ght/calendar-api/internal/config"
	"github.com/neonkn1ght/calendar-api/internal/handler"
	"github.com/neonkn1ght/calendar-api/internal/middleware"
	sqliteRepo "github.com/neonkn1ght/calendar-api/internal/repository/sqlite"
	"github.com/neonkn1ght/calendar-api/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with all dependencies wired.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /auth/signup   → create account, returns access_token
//	POST   /auth/signin   → verify credentials, returns access_token
//	GET    /users/me      → current user            (auth required)
//	PATCH  /users         → edit profile            (auth required)
//	GET    /events        → list own events         (auth required)
//	POST   /events        → create event            (auth required)
//	GET    /events/{id}   → get own event or null   (auth required)
//	PATCH  /events/{id}   → partial edit            (auth required)
//	DELETE /events/{id}   → delete                  (auth required)
//
// MIDDLEWARE ORDER MATTERS: RequestID and RealIP run first so the logger
// sees them; Recoverer turns panics into 500s instead of dropped
// connections; RequireAuth guards only the protected groups.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	authService := service.NewAuthService(s.db, passwords, tokens, s.logger)
	userService := service.NewUserService(s.db, s.logger)
	eventService := service.NewEventService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	eventHandler := handler.NewEventHandler(eventService, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/signin", authHandler.HandleSignin)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/users/me", userHandler.HandleMe)
		r.Patch("/users", userHandler.HandleEdit)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.HandleList)
			r.Post("/", eventHandler.HandleCreate)
			r.Get("/{id}", eventHandler.HandleGet)
			r.Patch("/{id}", eventHandler.HandleEdit)
			r.Delete("/{id}", eventHandler.HandleDelete)
		})
	})

	return nil
}

// Handler exposes the router, mainly for httptest-based tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's database connection. Tests use this directly;
// Start handles it during graceful shutdown.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds to finish, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
