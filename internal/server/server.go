package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alecf/manimator/internal/animation"
	"github.com/alecf/manimator/internal/cache"
	"github.com/alecf/manimator/internal/metrics"
)

// Options configures the HTTP listener
type Options struct {
	Addr            string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultOptions listens on :5000. Writes are unbounded since renders are slow.
func DefaultOptions() Options {
	return Options{
		Addr:            ":5000",
		ReadTimeout:     30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server exposes the animation service over HTTP
type Server struct {
	service *animation.Service
	cache   *cache.Cache
	metrics *metrics.Collector
	opts    Options
	logger  *zap.Logger
	handler http.Handler
}

// New builds the routed and middleware-wrapped handler. collector may be nil.
func New(service *animation.Service, c *cache.Cache, collector *metrics.Collector, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: service,
		cache:   c,
		metrics: collector,
		opts:    opts,
		logger:  logger.With(zap.String("component", "http_server")),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /generate-animation", s.handleGenerate)
	mux.HandleFunc("GET /video/{filename}", s.handleVideo)
	if collector != nil {
		mux.Handle("GET /metrics", collector.Handler())
	}

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		RequestLogger(s.logger),
		CORS(opts.CORSOrigins),
	}
	if collector != nil {
		middlewares = append(middlewares, Metrics(collector))
	}
	s.handler = Chain(mux, middlewares...)
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.opts.ReadTimeout,
		IdleTimeout:       s.opts.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultOptions().ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
