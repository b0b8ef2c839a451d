package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/docubot/rag-assistant/internal/utils"
)

type memoryRecord struct {
	vector   []float32
	metadata map[string]any
}

// MemoryIndex is an in-memory Index with the same contract as SQLiteIndex.
// Useful for tests and throwaway runs where nothing should touch disk.
type MemoryIndex struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{records: make(map[string]memoryRecord)}
}

func (m *MemoryIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	if len(vector) != Dimension {
		return fmt.Errorf("vector for %q has dimension %d, index expects %d", id, len(vector), Dimension)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if metadata == nil {
		metadata = map[string]any{}
	}
	m.records[id] = memoryRecord{vector: vector, metadata: metadata}
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match
	for id, rec := range m.records {
		score, err := utils.CosineSimilarity(vector, rec.vector)
		if err != nil {
			continue
		}
		matches = append(matches, Match{ID: id, Score: score, Metadata: rec.metadata})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *MemoryIndex) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]memoryRecord)
	return nil
}

func (m *MemoryIndex) Stats(ctx context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{TotalVectorCount: len(m.records), Dimension: Dimension}, nil
}

func (m *MemoryIndex) Close() error {
	return nil
}
