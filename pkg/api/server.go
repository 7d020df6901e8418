// Package api exposes the message codec, message log and document table
// over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route onto a chi router
func NewRouter(server *Server, gatherer prometheus.Gatherer) http.Handler {
	metrics := server.metrics
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		// Health check
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Codec
		r.With(byteOrderMiddleware(server.config.Order)).Post("/encode", metrics.InstrumentHandler("POST", "/api/v1/encode", server.handleEncode))
		r.With(byteOrderMiddleware(server.config.Order)).Post("/decode", metrics.InstrumentHandler("POST", "/api/v1/decode", server.handleDecode))

		// Message log
		r.Post("/messages", metrics.InstrumentHandler("POST", "/api/v1/messages", server.handleAppendMessage))
		r.Get("/messages", metrics.InstrumentHandler("GET", "/api/v1/messages", server.handleListMessages))
		r.Get("/messages/{offset}", metrics.InstrumentHandler("GET", "/api/v1/messages/{offset}", server.handleGetMessage))

		// Documents
		r.Post("/documents", metrics.InstrumentHandler("POST", "/api/v1/documents", server.handleCreateDocument))
		r.Get("/documents/{id}", metrics.InstrumentHandler("GET", "/api/v1/documents/{id}", server.handleGetDocument))
		r.Delete("/documents/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/documents/{id}", server.handleDeleteDocument))
	})

	return r
}

// NewRegistry returns a registry carrying the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// StartServer serves the API until ctx is cancelled, then shuts down gracefully
func StartServer(ctx context.Context, server *Server, gatherer prometheus.Gatherer) error {
	addr := fmt.Sprintf("%s:%d", server.config.Bind, server.config.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server, gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("starting bytestream API server", "addr", addr)
		server.logger.Info("metrics available", "url", fmt.Sprintf("http://%s/metrics", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.config.ShutdownTimeout)
		defer cancel()
		server.logger.Info("shutting down API server")
		return httpServer.Shutdown(shutdownCtx)
	}
}
