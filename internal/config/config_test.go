package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRetrievalDefaultsWhenFileMissing(t *testing.T) {
	r, err := LoadRetrieval(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "rag-chatbot", r.IndexName)
	assert.Equal(t, 1000, r.ChunkSize)
	assert.Equal(t, 200, r.ChunkOverlap)
	assert.Equal(t, 3, r.TopK)
	assert.InDelta(t, 0.7, float64(r.Threshold), 1e-6)
}

func TestLoadRetrievalFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "index_name: docs\nchunk_size: 500\nchunk_overlap: 50\ntop_k: 5\nthreshold: 0.8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := LoadRetrieval(path)
	require.NoError(t, err)

	assert.Equal(t, "docs", r.IndexName)
	assert.Equal(t, 500, r.ChunkSize)
	assert.Equal(t, 50, r.ChunkOverlap)
	assert.Equal(t, 5, r.TopK)
	assert.InDelta(t, 0.8, float64(r.Threshold), 1e-6)
}

func TestLoadRetrievalClampsOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: 100\nchunk_overlap: 150\n"), 0o644))

	r, err := LoadRetrieval(path)
	require.NoError(t, err)
	assert.Less(t, r.ChunkOverlap, r.ChunkSize)
}

func TestLoadRetrievalRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: [not a number"), 0o644))

	_, err := LoadRetrieval(path)
	require.Error(t, err)
}
