package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agentstation/toolindex/pkg/errors"
	"github.com/agentstation/toolindex/pkg/logging"
)

// DocumentKey is the object-storage key of the tools document.
const DocumentKey = "tools.json"

// Document is the persisted catalog layout: the full tool list plus
// bookkeeping metadata. It is loaded once at the start of a maintenance
// run and saved once at the end.
type Document struct {
	Tools       []*Tool   `json:"tools" yaml:"tools"`
	LastUpdated time.Time `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
}

// Store is the minimal document-storage contract the catalog needs.
// Implementations live in internal/storage (local files, object storage).
type Store interface {
	// Get returns the raw contents of the document at key.
	// A missing document yields errors.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes the document at key, replacing any previous contents.
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Load reads the tools document from the store. A missing document
// initializes an empty catalog; any other failure is fatal to the run.
func Load(ctx context.Context, store Store) (*Document, error) {
	raw, err := store.Get(ctx, DocumentKey)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			logging.Ctx(ctx).Info().Msg("No tools document found, initializing empty catalog")
			return &Document{Tools: []*Tool{}}, nil
		}
		return nil, errors.WrapIO("load", DocumentKey, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapParse("json", DocumentKey, err)
	}
	if doc.Tools == nil {
		doc.Tools = []*Tool{}
	}

	logging.Ctx(ctx).Info().Int("tools", len(doc.Tools)).Msg("Loaded tools document")
	return &doc, nil
}

// Save writes the tools document back to the store, stamping LastUpdated.
func Save(ctx context.Context, store Store, doc *Document) error {
	doc.LastUpdated = time.Now().UTC()

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.WrapParse("json", DocumentKey, err)
	}
	if err := store.Put(ctx, DocumentKey, raw, "application/json"); err != nil {
		return errors.WrapIO("save", DocumentKey, err)
	}

	logging.Ctx(ctx).Info().Int("tools", len(doc.Tools)).Msg("Saved tools document")
	return nil
}

// FindByID returns the tool with the given ID, or nil.
func (d *Document) FindByID(id string) *Tool {
	for _, tool := range d.Tools {
		if tool.ID == id {
			return tool
		}
	}
	return nil
}

// FindBySlug returns the tool whose current slug matches, or nil.
func (d *Document) FindBySlug(slug string) *Tool {
	for _, tool := range d.Tools {
		if tool.Slug == slug {
			return tool
		}
	}
	return nil
}
