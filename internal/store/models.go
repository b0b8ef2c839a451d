package store

import (
	"context"
	"errors"
)

const (
	// Dimension is the fixed embedding dimension of the index
	// (text-embedding-004 vectors).
	Dimension = 768
	// Metric names the similarity metric used for Query ranking.
	Metric = "cosine"
)

// ErrExternalService wraps failures talking to the index backend.
var ErrExternalService = errors.New("vector store unavailable")

// Match is one similarity-query result. Score is a cosine similarity,
// higher is more similar.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// Stats summarizes the index contents.
type Stats struct {
	TotalVectorCount int `json:"total_vector_count"`
	Dimension        int `json:"dimension"`
}

// Index is the vector store gateway. Upsert is idempotent per id; Query
// returns at most topK matches in descending score order; DeleteAll is
// irreversible and callers are expected to confirm before invoking it.
type Index interface {
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	DeleteAll(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}
