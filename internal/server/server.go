// Package server wires the sync server: the SQLite row table, the JWT
// validator, the realtime hub and the HTTP routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/lifedash/internal/config"
	"github.com/iudanet/lifedash/internal/server/handlers"
	"github.com/iudanet/lifedash/internal/server/jwt"
	"github.com/iudanet/lifedash/internal/server/middleware"
	"github.com/iudanet/lifedash/internal/server/realtime"
	"github.com/iudanet/lifedash/internal/server/storage/sqlite"
)

// Server владеет хранилищем и HTTP обработчиками
type Server struct {
	cfg     config.ServerConfig
	logger  *slog.Logger
	storage *sqlite.Storage
	hub     *realtime.Hub
	tokens  *jwt.Service
	limiter *middleware.RateLimiter
	version string
}

// New opens the row database and builds the server.
func New(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger, version string) (*Server, error) {
	storage, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		storage: storage,
		hub:     realtime.NewHub(realtime.DefaultBuffer, logger),
		tokens:  jwt.NewService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL),
		limiter: middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger),
		version: version,
	}, nil
}

// Tokens returns the service that issues and validates bearer tokens.
func (s *Server) Tokens() *jwt.Service {
	return s.tokens
}

// Handler returns the routed HTTP handler.
//
//	GET  /api/v1/health      - публичный
//	GET  /metrics            - публичный
//	GET  /api/v1/rows        - строки пользователя, ?since=<ms>
//	PUT  /api/v1/rows/{key}  - условный upsert
//	GET  /api/v1/realtime    - websocket поток изменений
func (s *Server) Handler() http.Handler {
	health := handlers.NewHealthHandler(s.logger, s.storage, s.version)
	rows := handlers.NewRowsHandler(s.logger, s.storage, s.hub)
	stream := handlers.NewRealtimeHandler(s.logger, s.hub)

	auth := middleware.AuthMiddleware(s.logger, s.tokens)
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(s.limiter.Middleware(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", health.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /api/v1/rows", protect(rows.List))
	mux.Handle("PUT /api/v1/rows/{key}", protect(rows.Upsert))
	mux.Handle("GET /api/v1/realtime", protect(stream.Subscribe))

	var handler http.Handler = mux
	handler = middleware.LoggingWithSkip(s.logger, []string{"/api/v1/health", "/metrics"})(handler)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	return handler
}

// Run serves HTTP on cfg.Address until ctx is done, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Websocket соединения после hijack не закрываются Shutdown, их гасит отмена baseCtx
	baseCtx, cancelBase := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBase()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Server listening", "address", ln.Addr().String(), "version", s.version)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server")
		cancelBase()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close releases the limiter and the database.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.storage.Close()
}
