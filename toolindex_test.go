package toolindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolindex/pkg/catalog"
)

func TestNew_DefaultsToEmptyCatalog(t *testing.T) {
	ix, err := New(WithLocalDir(t.TempDir()))
	require.NoError(t, err)

	doc, err := ix.Document(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Tools)

	registry, err := ix.Registry(context.Background())
	require.NoError(t, err)
	assert.Empty(t, registry.Tools)
}

func TestIndex_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ix, err := New(WithLocalDir(dir))
	require.NoError(t, err)

	doc, err := ix.Document(ctx)
	require.NoError(t, err)
	doc.Tools = append(doc.Tools, &catalog.Tool{ID: "tool-1", Name: "Alpha"})

	registry, err := ix.Registry(ctx)
	require.NoError(t, err)
	registry.RegisterTool("tool-1", "alpha")

	require.NoError(t, ix.Save(ctx, doc, registry))

	reopened, err := New(WithLocalDir(dir))
	require.NoError(t, err)
	loaded, err := reopened.Document(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Tools, 1)
	assert.Equal(t, "Alpha", loaded.Tools[0].Name)
}

func TestIndex_ReloadDropsSnapshot(t *testing.T) {
	ctx := context.Background()

	ix, err := New(WithLocalDir(t.TempDir()))
	require.NoError(t, err)

	doc, err := ix.Document(ctx)
	require.NoError(t, err)
	doc.Tools = append(doc.Tools, &catalog.Tool{ID: "tool-1", Name: "Alpha"})

	// Unsaved mutation survives while cached, disappears after Reload.
	again, err := ix.Document(ctx)
	require.NoError(t, err)
	assert.Len(t, again.Tools, 1)

	ix.Reload()
	fresh, err := ix.Document(ctx)
	require.NoError(t, err)
	assert.Empty(t, fresh.Tools)
}
