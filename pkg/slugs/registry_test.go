package slugs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolindex/pkg/errors"
)

type memoryStore struct {
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return data, nil
}

func (m *memoryStore) Put(_ context.Context, key string, data []byte, _ string) error {
	m.objects[key] = data
	return nil
}

func TestRegisterTool_Idempotent(t *testing.T) {
	registry := NewRegistry()

	registry.RegisterTool("tool-1", "gpt-4")
	registry.RegisterTool("tool-1", "gpt-4")

	entry := registry.Tools["tool-1"]
	require.NotNil(t, entry)
	assert.Equal(t, "gpt-4", entry.Current)
	assert.Empty(t, entry.History)
}

func TestRegisterTool_RenamePushesHistory(t *testing.T) {
	registry := NewRegistry()

	registry.RegisterTool("tool-1", "old-name")
	registry.RegisterTool("tool-1", "new-name")

	entry := registry.Tools["tool-1"]
	require.NotNil(t, entry)
	assert.Equal(t, "new-name", entry.Current)
	require.Len(t, entry.History, 1)
	assert.Equal(t, "old-name", entry.History[0].Slug)
	assert.NotEmpty(t, entry.History[0].ReplacedAt)
}

func TestRegisterComparison_RenameUpdatesParticipants(t *testing.T) {
	registry := NewRegistry()
	key := PairKey("tool-b", "tool-a")

	registry.RegisterComparison(key, "alpha-vs-beta", map[string]string{
		"tool-a": "alpha", "tool-b": "beta",
	})
	registry.RegisterComparison(key, "alpha-vs-gamma", map[string]string{
		"tool-a": "alpha", "tool-b": "gamma",
	})

	entry := registry.Comparisons[key]
	require.NotNil(t, entry)
	assert.Equal(t, "alpha-vs-gamma", entry.Current)
	assert.Equal(t, "gamma", entry.Participants["tool-b"])
	require.Len(t, entry.History, 1)
	assert.Equal(t, "alpha-vs-beta", entry.History[0].Slug)
}

func TestPairKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("a", "b"), PairKey("b", "a"))
}

func TestUsedSlugs_IncludesHistory(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterTool("tool-1", "old-name")
	registry.RegisterTool("tool-1", "new-name")
	registry.RegisterComparison(PairKey("tool-1", "tool-2"), "a-vs-b", nil)

	used := registry.UsedSlugs()
	assert.Contains(t, used, "old-name")
	assert.Contains(t, used, "new-name")
	assert.Contains(t, used, "a-vs-b")
}

func TestEnsureUnique(t *testing.T) {
	used := map[string]struct{}{
		"copilot":   {},
		"copilot-2": {},
	}

	assert.Equal(t, "copilot-3", EnsureUnique("copilot", used))
	assert.Contains(t, used, "copilot-3")
	assert.Equal(t, "fresh", EnsureUnique("fresh", used))
}

func TestReserveCurrent_KeepsOwnSlugAvailable(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterTool("tool-1", "copilot")

	used := registry.UsedSlugs()
	registry.ReserveCurrent("tool-1", used)

	// Re-deriving the same slug for the same tool must not force a suffix.
	assert.Equal(t, "copilot", EnsureUnique("copilot", used))
}

func TestResolveTool(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterTool("tool-1", "old-name")
	registry.RegisterTool("tool-1", "new-name")

	id, current, ok := registry.ResolveTool("new-name")
	require.True(t, ok)
	assert.True(t, current)
	assert.Equal(t, "tool-1", id)

	id, current, ok = registry.ResolveTool("old-name")
	require.True(t, ok)
	assert.False(t, current)
	assert.Equal(t, "tool-1", id)

	_, _, ok = registry.ResolveTool("missing")
	assert.False(t, ok)
}

func TestLoadSave_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	// Missing object initializes an empty registry.
	registry, err := Load(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, registry.Tools)

	registry.RegisterTool("tool-1", "gpt-4")
	require.NoError(t, Save(ctx, store, registry))

	loaded, err := Load(ctx, store)
	require.NoError(t, err)
	slug, ok := loaded.CurrentToolSlug("tool-1")
	require.True(t, ok)
	assert.Equal(t, "gpt-4", slug)
}

func TestLoad_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.objects[RegistryKey] = []byte("{not json")

	_, err := Load(ctx, store)
	assert.Error(t, err)
}
