// ABOUTME: HTTP server wiring for the splitledger API
// ABOUTME: Routes, request logging, health endpoints, and graceful shutdown

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/config"
	"github.com/splitledger/splitledger/internal/store"
)

// Server exposes the splitledger API over HTTP.
type Server struct {
	store      store.Store
	gateway    *auth.Gateway
	codec      auth.TokenCodec
	hasher     auth.PasswordHasher
	policy     auth.Policy
	tokenTTL   time.Duration
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server wired against the given store and auth components.
func New(cfg *config.Config, s store.Store, logger *slog.Logger) *Server {
	codec := auth.NewJWTCodec([]byte(cfg.Auth.Secret))
	hasher := auth.NewBcryptHasher()

	srv := &Server{
		store:    s,
		gateway:  auth.NewGateway(s, codec, hasher),
		codec:    codec,
		hasher:   hasher,
		policy:   auth.OwnerAgnosticPolicy{},
		tokenTTL: cfg.Auth.TokenTTL,
		logger:   logger.With("component", "api"),
	}

	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/health/ready", srv.handleReady)

	// User registration and lookup - no auth required
	mux.HandleFunc("/api/users", srv.handleUsers)
	mux.HandleFunc("/api/users/", srv.handleUserByID)

	// Everything below requires authentication
	authMiddleware := auth.RequireAuth(srv.gateway)
	mux.Handle("/api/token", authMiddleware(http.HandlerFunc(srv.handleToken)))
	mux.Handle("/transactions", authMiddleware(http.HandlerFunc(srv.handleTransactions)))
	mux.Handle("/transactions/", authMiddleware(http.HandlerFunc(srv.handleTransactionByID)))

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv
}

// logRequests tags each request with a correlation id and logs its outcome.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Handler returns the server's root HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
		return s.Shutdown()
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// handleReady handles GET /health/ready requests.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready when the store answers a trivial query
	if _, err := s.store.GetUser(r.Context(), 0); err != nil && !errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ready")
}
