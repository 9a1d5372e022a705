// Package server runs filterd's HTTP surface: the Prometheus metrics
// endpoint, health/ready probes, and the admin API, all behind one
// graceful-shutdown sequence.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SkynetNext/bpf-filter/internal/api"
	"github.com/SkynetNext/bpf-filter/internal/config"
	"github.com/SkynetNext/bpf-filter/internal/healthcheck"
	"github.com/SkynetNext/bpf-filter/internal/middleware"
	"github.com/SkynetNext/bpf-filter/pkg/xlog"
)

// Server owns filterd's metrics/health/admin HTTP listener.
type Server struct {
	cfg     *config.Config
	admin   *api.AdminAPI
	checker *healthcheck.Checker

	httpServer *http.Server
	wg         sync.WaitGroup
}

// New builds a Server. The admin API and health checker are wired onto one
// shared mux so a single listener serves /metrics, /health, /ready, and
// /admin/*.
func New(cfg *config.Config, admin *api.AdminAPI, checker *healthcheck.Checker) *Server {
	return &Server{cfg: cfg, admin: admin, checker: checker}
}

// Start begins serving in the background. It does not block.
func (s *Server) Start() {
	mux := http.NewServeMux()
	if s.cfg.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/ready", s.readyHandler)
	s.admin.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:    s.cfg.Admin.ListenAddr,
		Handler: middleware.AccessLog(middleware.Trace(mux)),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		xlog.Infof("admin/metrics server listening on %s", s.cfg.Admin.ListenAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			xlog.Errorf("admin/metrics server error: %v", err)
		}
	}()
}

// Shutdown stops the HTTP listener, giving in-flight requests up to timeout
// to complete.
func (s *Server) Shutdown(timeout time.Duration) {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		xlog.Warnf("admin/metrics server shutdown error: %v", err)
	}
	s.wg.Wait()
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	ready, reason := s.checker.Ready()
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(reason))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
