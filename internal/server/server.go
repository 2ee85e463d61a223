// Package server exposes recurrence evaluation over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/fibwindow/internal/config"
	apperrors "github.com/agbru/fibwindow/internal/errors"
	"github.com/agbru/fibwindow/internal/logging"
	"github.com/agbru/fibwindow/internal/recurrence"
	"github.com/agbru/fibwindow/internal/service"
)

// Server is the HTTP API. It wraps an http.Server with the middleware chain
// and graceful shutdown.
type Server struct {
	factory        recurrence.EvaluatorFactory
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	handler        http.Handler
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
	version        string
}

// NewServer creates a server for the strategies of factory. The listening
// port, the n limit and the default recurrence come from cfg.
//
// Parameters:
//   - factory: The strategy factory to retrieve implementations from.
//   - cfg: The application configuration (port, max-n, recurrence).
//   - opts: Optional functional options for customizing the server (e.g.,
//     WithLogger).
//
// Returns:
//   - *Server: A pointer to the initialized Server.
func NewServer(factory recurrence.EvaluatorFactory, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		factory:        factory,
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stderr, "server"),
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}
	if cfg.MaxN > 0 {
		s.securityConfig.MaxNValue = cfg.MaxN
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		s.service = service.NewEvaluatorService(s.factory, s.securityConfig.MaxNValue)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/evaluate", s.wrapWithMiddleware("/evaluate", s.handleEvaluate))
	mux.HandleFunc("/sequence", s.wrapWithMiddleware("/sequence", s.handleSequence))
	mux.HandleFunc("/algorithms", s.wrapWithMiddleware("/algorithms", s.handleAlgorithms))
	mux.HandleFunc("/health", s.wrapWithMiddleware("/health", s.handleHealth))
	mux.HandleFunc("/metrics", s.wrapWithMiddleware("/metrics", s.handleMetrics))
	s.handler = mux

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
		ErrorLog:     s.errorLog(),
	}

	return s
}

// Handler returns the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// errorLog routes http.Server internal errors to the structured logger.
func (s *Server) errorLog() *log.Logger {
	if z, ok := s.logger.(*logging.ZerologAdapter); ok {
		return logging.NewStdLogger(z.Zerolog())
	}
	return nil
}

// wrapWithMiddleware applies, from outermost: security headers, rate
// limiting, request ID, logging and metrics.
func (s *Server) wrapWithMiddleware(route string, handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(route, handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RequestIDMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	return SecurityMiddleware(s.securityConfig, wrapped)
}

// Start serves until ctx is canceled, SIGINT or SIGTERM is received, or the
// listener fails, then shuts down gracefully.
//
// Parameters:
//   - ctx: The context whose cancellation triggers the shutdown.
//
// Returns:
//   - error: The listener or shutdown error, or nil after a clean stop.
func (s *Server) Start(ctx context.Context) error {
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.shutdownSignal)
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			logging.String("addr", s.httpServer.Addr),
			logging.String("recurrence", s.cfg.DescribeRecurrence()),
			logging.Int64("max_n", s.securityConfig.MaxNValue))
		s.logger.Info("endpoints: GET /evaluate?n=<n>&algo=<name>&s0=&s1=&p=&q=, GET /sequence?n=<n>, GET /algorithms, GET /health, GET /metrics")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, shutting down")
	case <-s.shutdownSignal:
		s.logger.Info("shutdown signal received, shutting down")
	case err, ok := <-errCh:
		if ok {
			return apperrors.NewServerError("server failed to start", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
