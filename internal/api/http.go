// Package api provides the HTTP boundary of the whiskynights daemon.
package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/freemaltson/whiskynights/internal/catalog"
	"github.com/freemaltson/whiskynights/internal/library"
	"github.com/freemaltson/whiskynights/internal/log"
	"github.com/freemaltson/whiskynights/internal/registry"
)

// ProductCatalog is the external product lookup collaborator.
type ProductCatalog interface {
	Lookup(ctx context.Context, query string) (*catalog.Product, error)
}

// ReferenceLibrary serves the static whisky reference data.
type ReferenceLibrary interface {
	Entries() []library.Entry
}

// Server wires the registry, the reference library and the product catalog
// behind the HTTP API.
type Server struct {
	registry  *registry.Registry
	library   ReferenceLibrary
	catalog   ProductCatalog
	staticDir string
	logger    zerolog.Logger
}

// New builds the API server. staticDir may be empty to disable UI serving.
func New(reg *registry.Registry, lib ReferenceLibrary, cat ProductCatalog, staticDir string) *Server {
	return &Server{
		registry:  reg,
		library:   lib,
		catalog:   cat,
		staticDir: staticDir,
		logger:    log.WithComponent("api"),
	}
}

// Router assembles the chi router with the full middleware stack.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests)
	r.Use(collectMetrics)
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Get("/data", s.handleData)
		r.Post("/sessions", s.handleCreateSession)
		r.Put("/sessions/{sessionID}", s.handleUpdateSession)
		r.Get("/next-session", s.handleNextSession)
		r.Get("/search-whisky", s.handleSearchWhisky)
		r.Get("/image-search-url", s.handleImageSearchURL)

		// The catalog routes hit the external scraper; keep them on a
		// much tighter rate limit than the rest of the API.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			r.Get("/lookup-product", s.handleLookupProduct)
			r.Post("/enrich-all", s.handleEnrichAll)
		})
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	if s.staticDir != "" {
		if _, err := os.Stat(s.staticDir); err == nil {
			r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
		} else {
			s.logger.Warn().Str("dir", s.staticDir).Msg("static dir missing, UI disabled")
		}
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready once the state file is readable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.registry.Sessions(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
