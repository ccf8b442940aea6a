package slugs

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agentstation/toolindex/pkg/errors"
	"github.com/agentstation/toolindex/pkg/logging"
)

// RegistryKey is the object key the registry is persisted under.
const RegistryKey = "slug_registry.json"

// HistoryEntry records a slug that was retired in favor of a newer one.
type HistoryEntry struct {
	Slug       string `json:"slug"`
	ReplacedAt string `json:"replaced_at"`
}

// Entry is the registration record for a single tool or comparison.
type Entry struct {
	Current      string            `json:"current"`
	Participants map[string]string `json:"participants,omitempty"`
	History      []HistoryEntry    `json:"history"`
}

// Registry is the canonical slug ledger for tools and comparisons. Slugs
// that were ever published stay reserved through history entries so old
// URLs keep redirecting.
type Registry struct {
	Tools       map[string]*Entry `json:"tools"`
	Comparisons map[string]*Entry `json:"comparisons"`
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		Tools:       make(map[string]*Entry),
		Comparisons: make(map[string]*Entry),
	}
}

// Store persists and retrieves registry payloads by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Load reads the registry from the store. A missing object initializes a
// new registry; any other failure is returned.
func Load(ctx context.Context, store Store) (*Registry, error) {
	data, err := store.Get(ctx, RegistryKey)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			logging.Ctx(ctx).Info().Msg("no slug registry found, initializing new registry")
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("loading slug registry: %w", err)
	}

	registry := NewRegistry()
	if err := json.Unmarshal(data, registry); err != nil {
		return nil, errors.WrapParse("json", RegistryKey, err)
	}
	if registry.Tools == nil {
		registry.Tools = make(map[string]*Entry)
	}
	if registry.Comparisons == nil {
		registry.Comparisons = make(map[string]*Entry)
	}
	return registry, nil
}

// Save persists the registry to the store.
func Save(ctx context.Context, store Store, registry *Registry) error {
	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding slug registry: %w", err)
	}
	if err := store.Put(ctx, RegistryKey, data, "application/json"); err != nil {
		return fmt.Errorf("saving slug registry: %w", err)
	}
	logging.Ctx(ctx).Info().
		Int("tools", len(registry.Tools)).
		Int("comparisons", len(registry.Comparisons)).
		Msg("saved slug registry")
	return nil
}

// RegisterTool records slug as the canonical slug for toolID. Registering
// the current slug again is a no-op; a new slug pushes the old one onto
// the history.
func (r *Registry) RegisterTool(toolID, slug string) {
	if r.Tools == nil {
		r.Tools = make(map[string]*Entry)
	}
	entry, ok := r.Tools[toolID]
	if !ok {
		r.Tools[toolID] = &Entry{Current: slug, History: []HistoryEntry{}}
		return
	}
	entry.rotate(slug)
}

// RegisterComparison records slug for the comparison identified by key,
// refreshing the participant map whenever the slug changes.
func (r *Registry) RegisterComparison(key, slug string, participants map[string]string) {
	if r.Comparisons == nil {
		r.Comparisons = make(map[string]*Entry)
	}
	entry, ok := r.Comparisons[key]
	if !ok {
		r.Comparisons[key] = &Entry{
			Current:      slug,
			Participants: participants,
			History:      []HistoryEntry{},
		}
		return
	}
	if entry.Current == slug {
		return
	}
	entry.rotate(slug)
	entry.Participants = participants
}

func (e *Entry) rotate(slug string) {
	if e.Current == slug {
		return
	}
	if e.Current != "" {
		e.History = append(e.History, HistoryEntry{
			Slug:       e.Current,
			ReplacedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	e.Current = slug
}

// UsedSlugs collects every slug the registry has ever issued, current and
// historical, across both sections.
func (r *Registry) UsedSlugs() map[string]struct{} {
	used := make(map[string]struct{})
	for _, section := range []map[string]*Entry{r.Tools, r.Comparisons} {
		for _, entry := range section {
			if entry.Current != "" {
				used[entry.Current] = struct{}{}
			}
			for _, historic := range entry.History {
				if historic.Slug != "" {
					used[historic.Slug] = struct{}{}
				}
			}
		}
	}
	return used
}

// CurrentToolSlug returns the canonical slug registered for toolID.
func (r *Registry) CurrentToolSlug(toolID string) (string, bool) {
	entry, ok := r.Tools[toolID]
	if !ok || entry.Current == "" {
		return "", false
	}
	return entry.Current, true
}

// ResolveTool maps a slug, current or historical, to the owning tool ID.
// The second return reports whether the slug is the current one.
func (r *Registry) ResolveTool(slug string) (toolID string, current bool, ok bool) {
	for id, entry := range r.Tools {
		if entry.Current == slug {
			return id, true, true
		}
	}
	for id, entry := range r.Tools {
		for _, historic := range entry.History {
			if historic.Slug == slug {
				return id, false, true
			}
		}
	}
	return "", false, false
}

// ResolveComparison maps a slug to the owning comparison key.
func (r *Registry) ResolveComparison(slug string) (key string, current bool, ok bool) {
	for k, entry := range r.Comparisons {
		if entry.Current == slug {
			return k, true, true
		}
	}
	for k, entry := range r.Comparisons {
		for _, historic := range entry.History {
			if historic.Slug == slug {
				return k, false, true
			}
		}
	}
	return "", false, false
}

// PairKey builds the order-independent identity key for a comparison
// between two tool IDs.
func PairKey(toolIDA, toolIDB string) string {
	ids := []string{toolIDA, toolIDB}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// EnsureUnique returns slug unmodified when unused, otherwise the first
// free "-2", "-3", ... suffixed variant. The chosen slug is added to used.
func EnsureUnique(slug string, used map[string]struct{}) string {
	if _, taken := used[slug]; !taken {
		used[slug] = struct{}{}
		return slug
	}
	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s-%d", slug, counter)
		if _, taken := used[candidate]; !taken {
			used[candidate] = struct{}{}
			return candidate
		}
	}
}

// ReserveCurrent removes a tool's own current slug from used so the tool
// can keep it when slugs are re-derived.
func (r *Registry) ReserveCurrent(toolID string, used map[string]struct{}) {
	if entry, ok := r.Tools[toolID]; ok && entry.Current != "" {
		delete(used, entry.Current)
	}
}

// ReserveComparisonCurrent removes a comparison's own current slug from
// used, the pair-subject counterpart of ReserveCurrent.
func (r *Registry) ReserveComparisonCurrent(key string, used map[string]struct{}) {
	if entry, ok := r.Comparisons[key]; ok && entry.Current != "" {
		delete(used, entry.Current)
	}
}
