// Package httpapi is the HTTP/JSON adapter spec.md §6 describes: one
// action-dispatch endpoint plus the teacher's /health, /ready and
// /metrics routes, all served off a single http.ServeMux.
package httpapi

import (
	"net/http"
	"time"

	"github.com/aaviondb/aaviondb/pkg/bootstrap"
	"github.com/aaviondb/aaviondb/pkg/metrics"
)

// Server hosts the action-dispatch endpoint and the auxiliary
// health/ready/metrics routes over the wired Container.
type Server struct {
	container *bootstrap.Container
	mux       *http.ServeMux
}

// NewServer builds a Server from an already-wired Container (see
// bootstrap.New), mirroring the teacher's NewHealthServer(mgr) shape:
// one ServeMux, routes registered in the constructor.
func NewServer(c *bootstrap.Container) *Server {
	mux := http.NewServeMux()
	s := &Server{container: c, mux: mux}

	mux.HandleFunc("/", s.dispatchHandler)
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/ready", metrics.ReadyHandler())
	mux.HandleFunc("/live", metrics.LivenessHandler())
	mux.Handle("/metrics", metrics.Handler())

	metrics.RegisterComponent("api", true, "")
	metrics.RegisterComponent("storage", true, "")

	return s
}

// Start runs the server on addr until it returns an error (typically
// from Shutdown or ListenAndServe's own failure), matching the
// teacher's health server timeouts.
func (s *Server) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// GetHandler returns the HTTP handler for embedding in another server
// (tests use this to drive the mux with httptest, without binding a
// real port).
func (s *Server) GetHandler() http.Handler {
	return s.mux
}
