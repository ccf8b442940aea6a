package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_EmptyDSNIsOptional(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestNilStore_IsSafe(t *testing.T) {
	var store *Store

	// All operations on a nil store are no-ops.
	store.Record(context.Background(), Run{
		Pipeline:  "maintenance",
		Status:    StatusSuccess,
		StartedAt: time.Now(),
	})

	runs, err := store.Recent(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Nil(t, runs)

	assert.NoError(t, store.Close())
}
