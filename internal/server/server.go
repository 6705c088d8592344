// Package server exposes the render pipeline and the gallery over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/normalize
//	POST   /v1/render?format=&width=&height=&scale=&seed=
//	POST   /v1/pieces?owner=
//	GET    /v1/pieces?owner=&limit=
//	GET    /v1/pieces/{id}
//	GET    /v1/pieces/{id}/image?format=&width=&height=&scale=
//	DELETE /v1/pieces/{id}
//
// Errors are JSON objects carrying the error code from pkg/errors; the
// code determines the HTTP status.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tapestry/pkg/art"
	"github.com/matzehuels/tapestry/pkg/gallery"
	"github.com/matzehuels/tapestry/pkg/pipeline"
)

// Defaults.
const (
	DefaultAddr         = "localhost:8080"
	DefaultMaxBodyBytes = 1 << 20
	shutdownTimeout     = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr   string
	Runner *pipeline.Runner
	Logger *log.Logger

	// Store backs the /v1/pieces routes. Nil disables them.
	Store gallery.Store

	// Policy overrides the engine constants for every render.
	Policy *art.Policy

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	router chi.Router
}

// New creates a server. A nil Runner gets an uncached one.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.logRequest)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/normalize", s.handleNormalize)
		r.Post("/render", s.handleRender)
		if s.cfg.Store != nil {
			r.Route("/pieces", func(r chi.Router) {
				r.Post("/", s.handleCreatePiece)
				r.Get("/", s.handleListPieces)
				r.Get("/{id}", s.handleGetPiece)
				r.Get("/{id}/image", s.handlePieceImage)
				r.Delete("/{id}", s.handleDeletePiece)
			})
		}
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.cfg.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
