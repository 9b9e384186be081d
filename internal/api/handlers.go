package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freemaltson/whiskynights/internal/catalog"
	"github.com/freemaltson/whiskynights/internal/enrich"
	"github.com/freemaltson/whiskynights/internal/log"
	"github.com/freemaltson/whiskynights/internal/registry"
	"github.com/freemaltson/whiskynights/internal/search"
	"github.com/freemaltson/whiskynights/internal/session"
)

type dataResponse struct {
	Sessions []session.Record `json:"sessions"`
	Members  []string         `json:"members"`
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	sessions, members, err := s.registry.List(r.Context())
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("failed to list sessions")
		writeInternalError(w)
		return
	}
	if sessions == nil {
		sessions = []session.Record{}
	}
	if members == nil {
		members = []string{}
	}
	writeJSON(w, http.StatusOK, dataResponse{Sessions: sessions, Members: members})
}

type sessionResponse struct {
	Success bool           `json:"success"`
	Session session.Record `json:"session"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var rec session.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeBadRequest(w, err)
		return
	}

	stored, err := s.registry.Add(r.Context(), rec)
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("failed to add session")
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Success: true, Session: stored})
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var patch session.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, err)
		return
	}

	updated, err := s.registry.Update(r.Context(), id, patch)
	if errors.Is(err, registry.ErrNotFound) {
		writeErrorMessage(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str("id", id).Msg("failed to update session")
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Success: true, Session: updated})
}

func (s *Server) handleNextSession(w http.ResponseWriter, r *http.Request) {
	preview, err := s.registry.NextPreview(r.Context())
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("failed to build next session preview")
		writeInternalError(w)
		return
	}
	if preview.Hosts == nil {
		preview.Hosts = []string{}
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleSearchWhisky(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	sessions, err := s.registry.Sessions(r.Context())
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("failed to load sessions for search")
		writeInternalError(w)
		return
	}

	results := search.Candidates(query, sessions, s.library.Entries(), search.DefaultLimit)
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

type lookupResponse struct {
	DMURL    string   `json:"dm_url"`
	Price    *float64 `json:"price"`
	ImageURL string   `json:"image_url"`
}

func (s *Server) handleLookupProduct(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, map[string]string{"error": "No query provided"})
		return
	}

	product, err := s.catalog.Lookup(r.Context(), query)
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Warn().Err(err).Str("query", query).Msg("catalog lookup failed")
	}
	if err != nil || product == nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Not found"})
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{
		DMURL:    product.URL,
		Price:    product.Price,
		ImageURL: product.ImageURL,
	})
}

func (s *Server) handleImageSearchURL(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	var u *string
	if built := catalog.ImageSearchURL(name); built != "" {
		u = &built
	}
	writeJSON(w, http.StatusOK, map[string]*string{"url": u})
}

func (s *Server) handleEnrichAll(w http.ResponseWriter, r *http.Request) {
	lookup := func(ctx context.Context, query string) (*enrich.LookupResult, error) {
		product, err := s.catalog.Lookup(ctx, query)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, nil
		}
		return &enrich.LookupResult{
			DMURL:    product.URL,
			Price:    product.Price,
			ImageURL: product.ImageURL,
		}, nil
	}

	summary, err := enrich.ReconcileAll(r.Context(), s.registry, lookup)
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("batch enrichment failed")
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
