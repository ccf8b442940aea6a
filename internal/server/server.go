// Package server exposes the catalog over HTTP: tool and comparison
// lookup by slug with permanent redirects for retired slugs, the published
// sitemap files, and a health endpoint. It serves from an in-memory
// snapshot refreshed from storage in the background.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/toolindex/internal/sitemap"
	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/logging"
	"github.com/agentstation/toolindex/pkg/scoring"
	"github.com/agentstation/toolindex/pkg/slugs"
)

// Config holds server settings.
type Config struct {
	Addr            string
	RefreshInterval time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		RefreshInterval: 5 * time.Minute,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     120 * time.Second,
	}
}

// Server serves catalog lookups from a periodically refreshed snapshot.
type Server struct {
	store  storage.Store
	config Config
	logger *zerolog.Logger

	mu       sync.RWMutex
	doc      *catalog.Document
	registry *slugs.Registry

	startTime time.Time
}

// New creates a server and loads the initial snapshot.
func New(ctx context.Context, store storage.Store, cfg Config) (*Server, error) {
	s := &Server{
		store:     store,
		config:    cfg,
		logger:    logging.Ctx(ctx),
		startTime: time.Now(),
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory snapshot from storage.
func (s *Server) Reload(ctx context.Context) error {
	doc, err := catalog.Load(ctx, s.store)
	if err != nil {
		return err
	}
	registry, err := slugs.Load(ctx, s.store)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.registry = registry
	s.mu.Unlock()
	return nil
}

// Run serves HTTP until ctx is canceled, refreshing the snapshot on the
// configured interval.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	if s.config.RefreshInterval > 0 {
		go s.refreshLoop(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Str("addr", s.config.Addr).Msg("serving catalog")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reload(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("snapshot refresh failed")
			}
		}
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/tools/", s.handleTool)
	mux.HandleFunc("/category/", s.handleCategory)
	mux.HandleFunc("/compare/", s.handleComparison)
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		s.serveSitemap(w, r, sitemap.FileIndex)
	})
	mux.HandleFunc("/sitemaps/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/sitemaps/")
		s.serveSitemap(w, r, name)
	})

	return mux
}

func (s *Server) snapshot() (*catalog.Document, *slugs.Registry) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc, s.registry
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	doc, _ := s.snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"tools":          len(doc.Tools),
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
	})
}

// handleTool resolves /tools/{slug}. A current slug returns the tool; a
// retired slug 301s to its current location so old URLs keep working.
func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/tools/"), "/")
	if slug == "" {
		http.NotFound(w, r)
		return
	}

	doc, registry := s.snapshot()

	toolID, current, ok := registry.ResolveTool(slug)
	if !ok {
		// Tools can predate the registry; fall back to the document.
		if tool := doc.FindBySlug(slug); tool != nil {
			s.writeTool(w, tool)
			return
		}
		http.NotFound(w, r)
		return
	}

	if !current {
		currentSlug, ok := registry.CurrentToolSlug(toolID)
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/tools/"+currentSlug, http.StatusMovedPermanently)
		return
	}

	tool := doc.FindByID(toolID)
	if tool == nil {
		http.NotFound(w, r)
		return
	}
	s.writeTool(w, tool)
}

func (s *Server) writeTool(w http.ResponseWriter, tool *catalog.Tool) {
	if tool.Tier == scoring.TierNoIndex {
		w.Header().Set("X-Robots-Tag", "noindex")
	}
	writeJSON(w, http.StatusOK, tool)
}

// handleCategory resolves /category/{slug} to the indexable tools whose
// category derives to that slug. Categories have no registry entries;
// their slugs are pure derivations of the category name.
func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/category/"), "/")
	if slug == "" {
		http.NotFound(w, r)
		return
	}

	doc, _ := s.snapshot()

	var category string
	var matched []*catalog.Tool
	for _, tool := range doc.Tools {
		if tool.Category == "" || tool.Tier == scoring.TierNoIndex {
			continue
		}
		if slugs.Derive(tool.Category, 0) == slug {
			category = tool.Category
			matched = append(matched, tool)
		}
	}
	if len(matched) == 0 {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"slug":     slug,
		"tools":    matched,
	})
}

// handleComparison resolves /compare/{slug} with the same redirect rule.
func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/compare/"), "/")
	if slug == "" {
		http.NotFound(w, r)
		return
	}

	_, registry := s.snapshot()

	key, current, ok := registry.ResolveComparison(slug)
	if !ok {
		http.NotFound(w, r)
		return
	}

	entry := registry.Comparisons[key]
	if !current {
		http.Redirect(w, r, "/compare/"+entry.Current, http.StatusMovedPermanently)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"slug":         entry.Current,
		"participants": entry.Participants,
	})
}

func (s *Server) serveSitemap(w http.ResponseWriter, r *http.Request, name string) {
	if name == "" || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}
	blob, err := s.store.Get(r.Context(), sitemap.Prefix+name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Write(blob)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
