package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolindex/internal/sitemap"
	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/scoring"
	"github.com/agentstation/toolindex/pkg/slugs"
)

func newTestServer(t *testing.T) (*Server, storage.Store) {
	t.Helper()
	ctx := context.Background()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	doc := &catalog.Document{
		Tools: []*catalog.Tool{
			{ID: "tool-1", Name: "Alpha", Slug: "alpha", Tier: scoring.TierOne},
			{ID: "tool-2", Name: "Hidden", Slug: "hidden", Tier: scoring.TierNoIndex},
			{ID: "tool-3", Name: "Legacy", Slug: "legacy-only"},
		},
	}
	require.NoError(t, catalog.Save(ctx, store, doc))

	registry := slugs.NewRegistry()
	registry.RegisterTool("tool-1", "alpha")
	registry.RegisterTool("tool-1", "alpha-renamed")
	registry.RegisterTool("tool-2", "hidden")
	registry.RegisterComparison("tool-1|tool-2", "alpha-vs-hidden",
		map[string]string{"tool-1": "Alpha", "tool-2": "Hidden"})
	require.NoError(t, slugs.Save(ctx, store, registry))

	srv, err := New(ctx, store, Config{Addr: ":0"})
	require.NoError(t, err)
	return srv, store
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["tools"])
}

func TestServer_ToolBySlug(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv.Handler(), "/tools/alpha-renamed")
	require.Equal(t, http.StatusOK, rec.Code)

	var tool catalog.Tool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tool))
	assert.Equal(t, "tool-1", tool.ID)
	assert.Equal(t, "Alpha", tool.Name)
}

func TestServer_RetiredSlugRedirects(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv.Handler(), "/tools/alpha")
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/tools/alpha-renamed", rec.Header().Get("Location"))
}

func TestServer_ToolNotInRegistryFallsBackToDocument(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv.Handler(), "/tools/legacy-only")
	require.Equal(t, http.StatusOK, rec.Code)

	var tool catalog.Tool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tool))
	assert.Equal(t, "tool-3", tool.ID)
}

func TestServer_UnknownToolIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv.Handler(), "/tools/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_NoIndexToolGetsRobotsHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv.Handler(), "/tools/hidden")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "noindex", rec.Header().Get("X-Robots-Tag"))
}

func TestServer_CategoryBySlug(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	doc, _ := srv.snapshot()
	doc.Tools[0].Category = "Code Assistants"
	doc.Tools[1].Category = "Code Assistants" // noindex, must not appear
	require.NoError(t, catalog.Save(ctx, store, doc))
	require.NoError(t, srv.Reload(ctx))

	rec := get(t, srv.Handler(), "/category/code-assistants")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Category string          `json:"category"`
		Tools    []*catalog.Tool `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Code Assistants", body.Category)
	require.Len(t, body.Tools, 1)
	assert.Equal(t, "tool-1", body.Tools[0].ID)

	rec = get(t, srv.Handler(), "/category/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Comparison(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv.Handler(), "/compare/alpha-vs-hidden")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alpha-vs-hidden", body["slug"])
}

func TestServer_ComparisonRenameRedirects(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	srv.registry.RegisterComparison("tool-1|tool-2", "alpha-versus-hidden",
		map[string]string{"tool-1": "Alpha", "tool-2": "Hidden"})
	require.NoError(t, slugs.Save(ctx, srv.store, srv.registry))
	require.NoError(t, srv.Reload(ctx))

	rec := get(t, srv.Handler(), "/compare/alpha-vs-hidden")
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/compare/alpha-versus-hidden", rec.Header().Get("Location"))
}

func TestServer_Sitemaps(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	doc, _ := srv.snapshot()
	require.NoError(t, sitemap.Publish(ctx, store, doc, "https://example.com"))

	rec := get(t, srv.Handler(), "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))

	rec = get(t, srv.Handler(), "/sitemaps/"+sitemap.FileTools)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, srv.Handler(), "/sitemaps/missing.xml")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, srv.Handler(), "/sitemaps/nested/tools.json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ReloadPicksUpChanges(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	doc, _ := srv.snapshot()
	doc.Tools = append(doc.Tools, &catalog.Tool{ID: "tool-4", Name: "Delta", Slug: "delta"})
	require.NoError(t, catalog.Save(ctx, store, doc))
	require.NoError(t, srv.Reload(ctx))

	rec := get(t, srv.Handler(), "/tools/delta")
	assert.Equal(t, http.StatusOK, rec.Code)
}
