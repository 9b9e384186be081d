package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freemaltson/whiskynights/internal/catalog"
	"github.com/freemaltson/whiskynights/internal/library"
	"github.com/freemaltson/whiskynights/internal/registry"
	"github.com/freemaltson/whiskynights/internal/session"
	"github.com/freemaltson/whiskynights/internal/store"
)

type stubCatalog struct {
	product *catalog.Product
	err     error
	queries []string
}

func (c *stubCatalog) Lookup(_ context.Context, query string) (*catalog.Product, error) {
	c.queries = append(c.queries, query)
	return c.product, c.err
}

type stubLibrary []library.Entry

func (l stubLibrary) Entries() []library.Entry { return l }

func newTestServer(t *testing.T, cat ProductCatalog, lib ReferenceLibrary) chi.Router {
	t.Helper()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "sessions.json"))
	reg := registry.New(st, registry.Config{
		Resolver: session.NewResolver(map[string]string{
			"brass": "Braas",
			"braas": "Braas",
			"joess": "Joess",
		}),
		RoundSize: 7,
		Now:       func() time.Time { return time.Date(2026, 8, 29, 20, 0, 0, 0, time.UTC) },
	})
	if lib == nil {
		lib = stubLibrary(nil)
	}
	if cat == nil {
		cat = &stubCatalog{}
	}
	return New(reg, lib, cat, "").Router()
}

func doJSON(t *testing.T, router chi.Router, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestSessionLifecycle(t *testing.T) {
	router := newTestServer(t, nil, nil)

	// First submission allocates the very first slot and fixes the host
	// spelling.
	rec := doJSON(t, router, http.MethodPost, "/api/sessions", `{"whisky": "Talisker 10", "host": "brass"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		Success bool           `json:"success"`
		Session session.Record `json:"session"`
	}
	decodeBody(t, rec, &created)
	assert.True(t, created.Success)
	assert.Equal(t, "I:I", created.Session.ID)
	assert.Equal(t, "Braas", created.Session.Host)

	rec = doJSON(t, router, http.MethodPost, "/api/sessions", `{"whisky": "Oban 14", "host": "Joess"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &created)
	assert.Equal(t, "I:II", created.Session.ID)

	// Preview after two sessions reports the third slot without storing it.
	rec = doJSON(t, router, http.MethodGet, "/api/next-session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var preview registry.Preview
	decodeBody(t, rec, &preview)
	assert.Equal(t, "I:III", preview.ID)
	assert.Equal(t, "2026-08-29", preview.Date)
	assert.Equal(t, []string{"Braas", "Joess"}, preview.Hosts)

	// Search finds the first session as a local candidate.
	rec = doJSON(t, router, http.MethodGet, "/api/search-whisky?q=talisker", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var results []map[string]any
	decodeBody(t, rec, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "Talisker 10", results[0]["whisky"])
	assert.Equal(t, "local", results[0]["source"])

	// Partial update touches only the named fields.
	rec = doJSON(t, router, http.MethodPut, "/api/sessions/I:I", `{"region": "Island"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &created)
	assert.Equal(t, "Island", created.Session.Region)
	assert.Equal(t, "Talisker 10", created.Session.Whisky)
}

func TestUpdateUnknownSessionIs404(t *testing.T) {
	router := newTestServer(t, nil, nil)

	rec := doJSON(t, router, http.MethodPut, "/api/sessions/IX:IX", `{"region": "Islay"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Session not found", body["error"])
}

func TestDataFiltersEmptySessions(t *testing.T) {
	router := newTestServer(t, nil, nil)

	doJSON(t, router, http.MethodPost, "/api/sessions", `{"whisky": "Talisker 10", "host": "brass"}`)
	doJSON(t, router, http.MethodPost, "/api/sessions", `{}`)

	rec := doJSON(t, router, http.MethodGet, "/api/data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Sessions []session.Record `json:"sessions"`
		Members  []string         `json:"members"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, "I:I", body.Sessions[0].ID)
	assert.NotNil(t, body.Members)
}

func TestSearchShortQueryIsEmptyList(t *testing.T) {
	router := newTestServer(t, nil, stubLibrary{{Whisky: "Talisker 10"}})

	rec := doJSON(t, router, http.MethodGet, "/api/search-whisky?q=t", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestSearchMergesLibraryBehindLocal(t *testing.T) {
	router := newTestServer(t, nil, stubLibrary{
		{Whisky: "Talisker 10", Region: "Island", Type: "Single Malt"},
		{Whisky: "Talisker 18", Region: "Island", Type: "Single Malt"},
	})
	doJSON(t, router, http.MethodPost, "/api/sessions", `{"whisky": "Talisker 10", "host": "brass"}`)

	rec := doJSON(t, router, http.MethodGet, "/api/search-whisky?q=talisker", "")
	var results []map[string]any
	decodeBody(t, rec, &results)
	require.Len(t, results, 2)
	assert.Equal(t, "local", results[0]["source"])
	assert.Equal(t, "Talisker 10", results[0]["whisky"])
	assert.Equal(t, "library", results[1]["source"])
	assert.Equal(t, "Talisker 18", results[1]["whisky"])
}

func TestLookupProduct(t *testing.T) {
	price := 92.99
	cat := &stubCatalog{product: &catalog.Product{
		Name:     "Talisker 10",
		URL:      "https://catalog/product/talisker-10",
		Price:    &price,
		ImageURL: "https://cdn/talisker.jpg",
	}}
	router := newTestServer(t, cat, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/lookup-product?q=talisker", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, "https://catalog/product/talisker-10", body["dm_url"])
	assert.Equal(t, 92.99, body["price"])
	assert.Equal(t, "https://cdn/talisker.jpg", body["image_url"])
}

func TestLookupProductNotFound(t *testing.T) {
	router := newTestServer(t, &stubCatalog{}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/lookup-product?q=unobtainium", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Not found", body["error"])
}

func TestLookupProductNoQuery(t *testing.T) {
	cat := &stubCatalog{}
	router := newTestServer(t, cat, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/lookup-product", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "No query provided", body["error"])
	assert.Empty(t, cat.queries, "no catalog call without a query")
}

func TestLookupProductBlankQuery(t *testing.T) {
	cat := &stubCatalog{}
	router := newTestServer(t, cat, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/lookup-product?q=%20%20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "No query provided", body["error"])
	assert.Empty(t, cat.queries, "no catalog call for a blank query")
}

func TestImageSearchURL(t *testing.T) {
	router := newTestServer(t, nil, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/image-search-url?name=Talisker+10", "")
	var body map[string]*string
	decodeBody(t, rec, &body)
	require.NotNil(t, body["url"])
	assert.Contains(t, *body["url"], "google.com/search")

	rec = doJSON(t, router, http.MethodGet, "/api/image-search-url", "")
	decodeBody(t, rec, &body)
	assert.Nil(t, body["url"])

	rec = doJSON(t, router, http.MethodGet, "/api/image-search-url?name=%20%20", "")
	decodeBody(t, rec, &body)
	assert.Nil(t, body["url"], "blank name yields a null url")
}

func TestEnrichAll(t *testing.T) {
	price := 92.99
	cat := &stubCatalog{product: &catalog.Product{
		URL:      "https://catalog/product/talisker-10",
		Price:    &price,
		ImageURL: "https://cdn/talisker.jpg",
	}}
	router := newTestServer(t, cat, nil)

	doJSON(t, router, http.MethodPost, "/api/sessions", `{"whisky": "Talisker 10", "host": "brass", "image_url": "https://my/photo.jpg"}`)
	doJSON(t, router, http.MethodPost, "/api/sessions", `{"host": "Joess"}`)

	rec := doJSON(t, router, http.MethodPost, "/api/enrich-all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		Enriched int `json:"enriched"`
		Failed   int `json:"failed"`
	}
	decodeBody(t, rec, &summary)
	assert.Equal(t, 1, summary.Enriched)
	assert.Zero(t, summary.Failed)

	// The hand-picked image survives; price and link were filled.
	data := doJSON(t, router, http.MethodGet, "/api/data", "")
	var body struct {
		Sessions []session.Record `json:"sessions"`
	}
	decodeBody(t, data, &body)
	require.Len(t, body.Sessions, 2)
	assert.Equal(t, "https://my/photo.jpg", body.Sessions[0].ImageURL)
	require.NotNil(t, body.Sessions[0].RRP)
	assert.Equal(t, 92.99, *body.Sessions[0].RRP)
	assert.Equal(t, "https://catalog/product/talisker-10", body.Sessions[0].DMURL)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestServer(t, nil, nil)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestServer(t, nil, nil)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "caller-supplied")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied", rec.Header().Get(headerRequestID))
}
