// Package toolindex is the library entry point for the tool catalog: it
// opens a storage backend and exposes the document and slug registry with
// a cached snapshot, so embedders get the same view the CLI operates on.
package toolindex

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/slugs"
)

// Index provides read and write access to a tool catalog.
type Index interface {
	// Document returns the current tools document, loading it on first use.
	Document(ctx context.Context) (*catalog.Document, error)

	// Registry returns the slug registry, loading it on first use.
	Registry(ctx context.Context) (*slugs.Registry, error)

	// Save persists the document and registry together.
	Save(ctx context.Context, doc *catalog.Document, registry *slugs.Registry) error

	// Reload discards the cached snapshot.
	Reload()

	// Store exposes the underlying storage backend.
	Store() storage.Store
}

// index is the internal implementation of the Index interface.
type index struct {
	mu       sync.Mutex
	store    storage.Store
	doc      *catalog.Document
	registry *slugs.Registry
}

// New creates an Index with the given options. Without options it opens
// the local-filesystem backend in the default data directory.
func New(opts ...Option) (Index, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	store := cfg.store
	if store == nil {
		var err error
		store, err = storage.New(cfg.storage)
		if err != nil {
			return nil, err
		}
	}
	return &index{store: store}, nil
}

func (ix *index) Document(ctx context.Context) (*catalog.Document, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.doc == nil {
		doc, err := catalog.Load(ctx, ix.store)
		if err != nil {
			return nil, err
		}
		ix.doc = doc
	}
	return ix.doc, nil
}

func (ix *index) Registry(ctx context.Context) (*slugs.Registry, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.registry == nil {
		registry, err := slugs.Load(ctx, ix.store)
		if err != nil {
			return nil, err
		}
		ix.registry = registry
	}
	return ix.registry, nil
}

func (ix *index) Save(ctx context.Context, doc *catalog.Document, registry *slugs.Registry) error {
	if err := catalog.Save(ctx, ix.store, doc); err != nil {
		return err
	}
	if err := slugs.Save(ctx, ix.store, registry); err != nil {
		return err
	}

	ix.mu.Lock()
	ix.doc = doc
	ix.registry = registry
	ix.mu.Unlock()
	return nil
}

func (ix *index) Reload() {
	ix.mu.Lock()
	ix.doc = nil
	ix.registry = nil
	ix.mu.Unlock()
}

func (ix *index) Store() storage.Store {
	return ix.store
}
