package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-view/internal/coordinator"
	"github.com/couchcryptid/quake-view/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes health, readiness, metrics and the JSON control API.
type Server struct {
	httpServer *http.Server
	coord      *coordinator.Coordinator
	loop       *coordinator.Loop
	mapView    *view.Map
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and /api
// routes. Every /api request runs on the coordinator's event loop.
func NewServer(addr string, coord *coordinator.Coordinator, loop *coordinator.Loop, mapView *view.Map, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		coord:   coord,
		loop:    loop,
		mapView: mapView,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	s.routes(mux)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// Checks is a ReadinessChecker that passes only when every check passes.
type Checks []sharedobs.ReadinessChecker

// CheckReadiness runs the checks in order and returns the first failure.
func (c Checks) CheckReadiness(ctx context.Context) error {
	for _, check := range c {
		if err := check.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ReadinessFunc adapts a function to a ReadinessChecker.
type ReadinessFunc func(ctx context.Context) error

// CheckReadiness calls f.
func (f ReadinessFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }
