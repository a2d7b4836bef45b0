// Package api exposes the question-answering pipeline over HTTP.
//
// Endpoints:
//
//	POST   /api/ask            -> run the pipeline for one question
//	GET    /api/datasets       -> list catalog datasets
//	GET    /api/stats          -> catalog counts by category
//	GET    /api/sessions       -> list sessions
//	POST   /api/sessions       -> create session
//	GET    /api/sessions/{id}  -> session with its exchanges
//	DELETE /api/sessions/{id}  -> delete session
//	GET    /health             -> liveness probe
//	GET    /ready              -> readiness probe (pings the database)
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (logging, recovery)
//   - health.go: health check endpoints
//   - ask.go: question answering endpoint
//   - datasets.go: catalog endpoints
//   - session.go: session history endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/samarthdata/samarth/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:3500"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout prevents Slowloris-style header trickling.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is generous: one request can fan out to several
	// data.gov.in fetches plus model calls.
	WriteTimeout = 5 * time.Minute

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for the REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health   *HealthHandler
	ask      *AskHandler
	datasets *DatasetHandler
	sessions *SessionHandler
}

// NewServer creates a server with all routes registered.
func NewServer(health *HealthHandler, ask *AskHandler, datasets *DatasetHandler, sessions *SessionHandler, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		logger:   logger,
		health:   health,
		ask:      ask,
		datasets: datasets,
		sessions: sessions,
	}

	s.health.RegisterRoutes(mux)
	s.ask.RegisterRoutes(mux)
	s.datasets.RegisterRoutes(mux)
	s.sessions.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery -> logging -> handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, panicRecovery(s.logger), requestLogging(s.logger))
}

// Mount registers the API routes on an external mux, for serving the API and
// the web UI from one listener.
func (s *Server) Mount(mux *http.ServeMux) {
	mux.Handle("/api/", s.Handler())
	mux.Handle("/health", s.Handler())
	mux.Handle("/ready", s.Handler())
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
