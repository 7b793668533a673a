// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// HTTPServer serves health, metrics and the JSON API.
type HTTPServer struct {
	server   *http.Server
	port     int
	api      *handler.HTTP
	registry *prometheus.Registry
	checks   []ReadinessCheck
}

// ReadinessCheck is a dependency probed by /readyz.
type ReadinessCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// NewHTTPServer creates a new HTTP server instance.
func NewHTTPServer(port int, api *handler.HTTP, registry *prometheus.Registry) *HTTPServer {
	return &HTTPServer{
		port:     port,
		api:      api,
		registry: registry,
	}
}

// AddReadinessCheck registers a dependency probed by /readyz.
func (s *HTTPServer) AddReadinessCheck(c ReadinessCheck) {
	s.checks = append(s.checks, c)
}

// Router returns the chi router with every route mounted.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/nudges/evaluate", s.api.Evaluate)
		r.Get("/creators/{creatorID}/inbox", s.api.Inbox)
	})
	return r
}

func (s *HTTPServer) readyz(w http.ResponseWriter, r *http.Request) {
	for _, c := range s.checks {
		if err := c.Check(r.Context()); err != nil {
			logrus.Warnf("readiness check %s failed: %v", c.Name(), err)
			http.Error(w, c.Name()+" unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Setup builds the underlying http.Server.
func (s *HTTPServer) Setup() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

// Start begins serving HTTP on the configured port.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		logrus.Infof("HTTP server listening on port %d", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("HTTP server stopped")
	return nil
}
