package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitVector returns a Dimension-length vector pointing along axis i.
// Distinct axes are orthogonal, so scores are 1 against themselves and 0
// against each other.
func unitVector(axis int) []float32 {
	v := make([]float32, Dimension)
	v[axis%Dimension] = 1
	return v
}

func newTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"), "test-index")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSQLiteIndexUpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, "a", unitVector(0), map[string]any{"text": "alpha"}))
	require.NoError(t, idx.Upsert(ctx, "b", unitVector(1), map[string]any{"text": "beta"}))

	matches, err := idx.Query(ctx, unitVector(0), 3)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-5)
	assert.Equal(t, "alpha", matches[0].Metadata["text"])
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestSQLiteIndexQueryRespectsTopK(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, idx.Upsert(ctx, string(rune('a'+i)), unitVector(i), nil))
	}

	matches, err := idx.Query(ctx, unitVector(0), 3)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestSQLiteIndexQueryEmptyStore(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	matches, err := idx.Query(ctx, unitVector(0), 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSQLiteIndexUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, "a", unitVector(0), map[string]any{"text": "old"}))
	require.NoError(t, idx.Upsert(ctx, "a", unitVector(1), map[string]any{"text": "new"}))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectorCount)

	matches, err := idx.Query(ctx, unitVector(1), 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new", matches[0].Metadata["text"])
}

func TestSQLiteIndexRejectsWrongDimension(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	err := idx.Upsert(ctx, "bad", []float32{1, 2, 3}, nil)
	require.Error(t, err)
}

func TestSQLiteIndexDeleteAll(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, "a", unitVector(0), nil))
	require.NoError(t, idx.Upsert(ctx, "b", unitVector(1), nil))
	require.NoError(t, idx.DeleteAll(ctx))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalVectorCount)
	assert.Equal(t, Dimension, stats.Dimension)
}

func TestSQLiteIndexReopenReusesData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	idx, err := NewSQLiteIndex(path, "test-index")
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, "a", unitVector(0), map[string]any{"text": "kept"}))
	require.NoError(t, idx.Close())

	reopened, err := NewSQLiteIndex(path, "test-index")
	require.NoError(t, err)
	defer reopened.Close()

	stats, err := reopened.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectorCount)
}
