// Package server exposes magnitude evaluation over HTTP.
//
// Endpoints:
//
//	POST /v1/eval   evaluate one operation
//	GET  /healthz   allocator statistics and a host resource sample
//	GET  /metrics   Prometheus metrics
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/magcalc/internal/alloc"
	"github.com/agbru/magcalc/internal/logging"
	"github.com/agbru/magcalc/internal/orchestration"
)

const (
	// RequestIDHeader carries the request ID, generated when absent.
	RequestIDHeader = "X-Request-ID"
	// ShutdownTimeout bounds the graceful shutdown of in-flight requests.
	ShutdownTimeout = 10 * time.Second
	// DefaultRequestTimeout bounds a single evaluation.
	DefaultRequestTimeout = 30 * time.Second
)

// Server serves evaluation requests from a shared Engine.
type Server struct {
	engine     *orchestration.Engine
	addr       string
	timeout    time.Duration
	security   SecurityConfig
	logger     logging.Logger
	metrics    *Metrics
	stats      func() alloc.Stats
	startTime  time.Time
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMetrics sets the metrics the server records into and exposes.
func WithMetrics(m *Metrics) Option { return func(s *Server) { s.metrics = m } }

// WithSecurityConfig replaces DefaultSecurityConfig.
func WithSecurityConfig(c SecurityConfig) Option { return func(s *Server) { s.security = c } }

// WithAllocatorStats sets the source of the allocator figures of /healthz.
func WithAllocatorStats(stats func() alloc.Stats) Option {
	return func(s *Server) { s.stats = stats }
}

// WithRequestTimeout bounds each evaluation.
func WithRequestTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }

// NewServer creates a server listening on addr once started.
func NewServer(engine *orchestration.Engine, addr string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		addr:      addr,
		timeout:   DefaultRequestTimeout,
		security:  DefaultSecurityConfig(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewDefaultLogger()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/eval", s.chain(s.handleEval))
	mux.HandleFunc("/healthz", s.chain(s.handleHealth))
	mux.HandleFunc("/metrics", s.chain(s.handleMetrics))
	return mux
}

// chain wraps h with request IDs, security headers, metrics and logging.
func (s *Server) chain(h http.HandlerFunc) http.HandlerFunc {
	return requestIDMiddleware(SecurityMiddleware(s.security, s.metricsMiddleware(s.loggingMiddleware(h))))
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. It
// returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.timeout + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.Serve(ln) }()
	s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("graceful shutdown failed", err)
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

type requestIDKey struct{}

// RequestID returns the ID assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestIDMiddleware propagates the client's X-Request-ID or assigns a new
// UUID, echoing it on the response.
func requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	}
}

func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		s.logger.Debug("request served",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("request_id", RequestID(r.Context())),
			logging.Duration("duration", time.Since(start)))
	}
}
