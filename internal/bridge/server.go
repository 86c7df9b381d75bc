// Package bridge serves the command surface and event stream to the front-end
// over loopback HTTP.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"chroma/internal/events"
	"chroma/internal/logger"
	"chroma/internal/window"
)

const (
	DefaultAddr              = "127.0.0.1:1430"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
	DefaultMaxBodyBytes      = 1 << 20
	eventBacklog             = 32

	// TokenHeader carries the bridge token when one is configured.
	TokenHeader = "X-Chroma-Token"
)

// Invoker runs a named command against the bound window.
type Invoker interface {
	Invoke(ctx context.Context, name string, win *window.Handle, args json.RawMessage) (interface{}, error)
}

// Subscriber is the subscribe side of the event bus.
type Subscriber interface {
	Subscribe(name string, handler events.Handler)
	Unsubscribe(name string, handler events.Handler)
}

type Server struct {
	addr            string
	invoker         Invoker
	window          *window.Handle
	bus             Subscriber
	logger          logger.Logger
	mux             *http.ServeMux
	shutdownTimeout time.Duration
	maxBodyBytes    int64
	origins         map[string]struct{}
	token           string

	mu      sync.RWMutex
	running bool
	bound   string
	streams atomic.Uint64
}

type Option func(*Server)

func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

func WithLogger(log logger.Logger) Option {
	return func(s *Server) { s.logger = log }
}

// WithMetrics mounts a metrics handler at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.mux.Handle("GET /metrics", h) }
}

// WithAllowedOrigins sets the browser origins allowed to call the bridge.
// Requests carrying any other Origin header are rejected.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		for _, origin := range origins {
			s.origins[normalizeOrigin(origin)] = struct{}{}
		}
	}
}

// WithToken requires every invocation to carry token in TokenHeader.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBodyBytes = n }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// New binds every invocation to win, the window the front-end lives in.
func New(invoker Invoker, win *window.Handle, bus Subscriber, opts ...Option) *Server {
	s := &Server{
		addr:            DefaultAddr,
		invoker:         invoker,
		window:          win,
		bus:             bus,
		logger:          logger.Nop(),
		mux:             http.NewServeMux(),
		shutdownTimeout: DefaultShutdownTimeout,
		maxBodyBytes:    DefaultMaxBodyBytes,
		origins:         make(map[string]struct{}),
	}

	s.mux.HandleFunc("POST /invoke/{command}", s.handleInvoke)
	s.mux.HandleFunc("GET /events", s.handleEvents)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.guard(s.mux)
}

func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr is the bound address once running, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bound != "" {
		return s.bound
	}
	return s.addr
}

// Serve blocks until ctx is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("bridge listen %s: %w", s.addr, err)
	}

	// No write timeout: /events responses stay open.
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.logger.Info("Bridge", "bridge listening", map[string]interface{}{
		"addr": listener.Addr().String(),
	})

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.mu.Lock()
		s.running = true
		s.bound = listener.Addr().String()
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("bridge serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		start := time.Now()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warning("Bridge", "bridge shutdown incomplete", map[string]interface{}{
				"error": err.Error(),
			})
		}
		s.logger.Info("Bridge", "bridge stopped", map[string]interface{}{
			"duration": time.Since(start).String(),
		})
		return nil
	})

	return g.Wait()
}
