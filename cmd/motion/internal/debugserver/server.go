// Package debugserver serves run inspection endpoints over HTTP.
package debugserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/go-drift/motion/cmd/motion/internal/metrics"
	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

// StatusFunc reports the state of the runner being inspected. It is called
// from HTTP handler goroutines, so implementations must hop to the goroutine
// that owns the runner.
type StatusFunc func(ctx context.Context) (animation.RunnerSnapshot, error)

// Options configures a Server. Every field is optional; endpoints whose
// source is missing answer 503.
type Options struct {
	Trace    *animation.FrameTraceBuffer
	Status   StatusFunc
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server is the debug HTTP server.
type Server struct {
	opts   Options
	router chi.Router

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New builds a Server with its routes registered.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(recoverMiddleware)
	r.Get("/health", s.handleHealth)
	r.Get("/frames", s.handleFrames)
	r.Get("/runner", s.handleRunner)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(opts.Gatherer))
	} else {
		r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics disabled", http.StatusServiceUnavailable)
		})
	}
	s.router = r
	return s
}

// Handler returns the router for use with http.Server or httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds addr and serves in the background. It returns the bound
// address, which differs from addr when an ephemeral port is requested.
// Calling Start on a running server returns the current address.
func (s *Server) Start(addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.listener.Addr().String(), nil
	}

	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", &errors.Error{
			Op:        "debugserver.Start",
			Kind:      errors.KindServer,
			Err:       fmt.Errorf("listen %s: %w", addr, err),
			Timestamp: time.Now(),
		}
	}

	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			// Server failed - clear state so it can be restarted
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
			errors.Report(&errors.Error{
				Op:        "debugserver.Serve",
				Kind:      errors.KindServer,
				Err:       err,
				Timestamp: time.Now(),
			})
		}
	}()

	s.opts.Logger.Info("debug server listening", zap.String("addr", listener.Addr().String()))
	return listener.Addr().String(), nil
}

// Shutdown gracefully stops the server. It is a no-op when not running.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleFrames returns the trace timeline. Query parameters: limit keeps the
// newest N samples, event keeps one event kind, min_delta_ms keeps slow
// frames.
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	if s.opts.Trace == nil {
		http.Error(w, "frame tracing disabled", http.StatusServiceUnavailable)
		return
	}
	resp := s.opts.Trace.Snapshot()
	applyFrameFilters(r, &resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRunner(w http.ResponseWriter, r *http.Request) {
	if s.opts.Status == nil {
		http.Error(w, "no runner attached", http.StatusServiceUnavailable)
		return
	}
	snap, err := s.opts.Status(r.Context())
	if err != nil {
		s.opts.Logger.Warn("runner status unavailable", zap.Error(err))
		http.Error(w, fmt.Sprintf("runner status: %v", err), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func applyFrameFilters(r *http.Request, resp *animation.FrameTimeline) {
	query := r.URL.Query()

	limit := 0
	if value := query.Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var filters []func(animation.FrameSample) bool
	if event := query.Get("event"); event != "" {
		filters = append(filters, func(s animation.FrameSample) bool { return s.Event == event })
	}
	if value := query.Get("min_delta_ms"); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
			filters = append(filters, func(s animation.FrameSample) bool { return s.DeltaMs >= v })
		}
	}

	if len(filters) > 0 {
		filtered := make([]animation.FrameSample, 0, len(resp.Samples))
	outer:
		for _, sample := range resp.Samples {
			for _, f := range filters {
				if !f(sample) {
					continue outer
				}
			}
			filtered = append(filtered, sample)
		}
		resp.Samples = filtered
	}

	if limit > 0 && len(resp.Samples) > limit {
		resp.Samples = resp.Samples[len(resp.Samples)-limit:]
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	// Encode to buffer first so we can catch errors
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				errors.ReportPanic(&errors.PanicError{
					Op:         "debugserver." + r.URL.Path,
					Value:      rec,
					StackTrace: errors.CaptureStack(),
					Timestamp:  time.Now(),
				})
				http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
