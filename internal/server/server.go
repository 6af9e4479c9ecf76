// Package server exposes the dashboard HTTP API: login, the aggregated
// sales report, and a health probe.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/james2654817/sales-dashboard-backend/internal/auth"
	"github.com/james2654817/sales-dashboard-backend/internal/report"
)

// Server wires the auth gate and report assembler into HTTP handlers.
type Server struct {
	gate      *auth.Gate
	assembler *report.Assembler
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the wall clock, for tests that pin "today".
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a Server.
func New(gate *auth.Gate, assembler *report.Assembler, opts ...Option) *Server {
	s := &Server{
		gate:      gate,
		assembler: assembler,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router with CORS and request logging. The
// dashboard is a browser client on another origin, so CORS is part of
// the contract, not an afterthought.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/api/login", s.handleLogin)
	r.Get("/api/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/api/sales", s.handleSales)
	})

	return r
}
