package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolindex/pkg/errors"
)

type memoryStore struct {
	objects map[string][]byte
	getErr  error
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return data, nil
}

func (m *memoryStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = data
	return nil
}

func TestLoad_MissingDocumentInitializesEmptyCatalog(t *testing.T) {
	doc, err := Load(context.Background(), newMemoryStore())

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.NotNil(t, doc.Tools)
	assert.Empty(t, doc.Tools)
}

func TestLoad_StoreFailureIsFatal(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("connection refused")

	_, err := Load(context.Background(), store)
	assert.Error(t, err)
}

func TestLoad_CorruptDocumentIsFatal(t *testing.T) {
	store := newMemoryStore()
	store.objects[DocumentKey] = []byte("{broken")

	_, err := Load(context.Background(), store)
	assert.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	doc := &Document{Tools: []*Tool{
		{ID: "tool-1", Name: "Example", Slug: "example", URL: "https://example.com"},
	}}
	require.NoError(t, Save(ctx, store, doc))
	assert.False(t, doc.LastUpdated.IsZero())

	loaded, err := Load(ctx, store)
	require.NoError(t, err)
	require.Len(t, loaded.Tools, 1)
	assert.Equal(t, "tool-1", loaded.Tools[0].ID)
	assert.Equal(t, "example", loaded.Tools[0].Slug)
}

func TestDocument_Find(t *testing.T) {
	doc := &Document{Tools: []*Tool{
		{ID: "a", Slug: "alpha"},
		{ID: "b", Slug: "beta"},
	}}

	require.NotNil(t, doc.FindByID("b"))
	assert.Equal(t, "beta", doc.FindByID("b").Slug)
	require.NotNil(t, doc.FindBySlug("alpha"))
	assert.Equal(t, "a", doc.FindBySlug("alpha").ID)
	assert.Nil(t, doc.FindByID("missing"))
	assert.Nil(t, doc.FindBySlug("missing"))
}

func TestTool_EnhancedTime(t *testing.T) {
	valid := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tool := &Tool{EnhancedAt: valid.Format(time.RFC3339)}
	got, ok := tool.EnhancedTime()
	require.True(t, ok)
	assert.True(t, got.Equal(valid))

	_, ok = (&Tool{}).EnhancedTime()
	assert.False(t, ok)

	_, ok = (&Tool{EnhancedAt: "not-a-time"}).EnhancedTime()
	assert.False(t, ok)
}
