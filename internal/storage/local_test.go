package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolindex/pkg/errors"
)

func TestLocalStore_MissingKeyIsNotFound(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "absent.json")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestLocalStore_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	payload := []byte(`{"tools":[]}`)
	require.NoError(t, store.Put(ctx, "tools.json", payload, "application/json"))

	got, err := store.Get(ctx, "tools.json")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestLocalStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "doc", []byte("one"), ""))
	require.NoError(t, store.Put(ctx, "doc", []byte("two"), ""))

	got, err := store.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestLocalStore_NestedKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "sitemaps/tools.xml", []byte("<urlset/>"), "application/xml"))

	_, statErr := os.Stat(filepath.Join(dir, "sitemaps", "tools.xml"))
	assert.NoError(t, statErr)
}

func TestLocalStore_LeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "doc.json", []byte("{}"), ""))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.json", entries[0].Name())
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "tape"})
	assert.Error(t, err)
}

func TestNopCache(t *testing.T) {
	cache := NopCache{}
	cache.Set(context.Background(), "k", []byte("v"), 0)

	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)
}
