// Package api exposes the assistant over HTTP for chatbot integrations.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

const requestTimeout = 2 * time.Minute

// Asker answers one question. *assistant.Session satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Server holds the dependencies of the HTTP API.
type Server struct {
	asker   Asker
	apiKey  string
	limiter *rate.Limiter
}

// Option configures the Server.
type Option func(*Server)

// WithAPIKey requires callers to present key, either in the request body
// or in the X-API-Key header.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithRateLimit caps the request rate across all callers with a token
// bucket. perSecond <= 0 disables the limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewServer builds a Server around asker.
func NewServer(asker Asker, opts ...Option) *Server {
	s := &Server{asker: asker}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the chi router with middleware and routes installed.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(s.limiter))
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/query", s.handleQuery)
	})
	return r
}
