package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/docubot/rag-assistant/internal/utils"
)

// SQLiteIndex is a local vector index backed by SQLite. Vectors and their
// metadata are stored as JSON strings; similarity queries load the vectors
// and rank them with cosine similarity in process.
type SQLiteIndex struct {
	db        *sql.DB
	name      string
	dimension int
}

// NewSQLiteIndex opens (or creates) the index at dataSourceName. Creation is
// idempotent: a fresh database gets the schema and a meta row recording the
// index name, dimension and metric; an existing one is reused after checking
// that its dimension still matches.
func NewSQLiteIndex(dataSourceName, indexName string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open index database: %v", ErrExternalService, err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: failed to ping index database: %v", ErrExternalService, err)
	}

	idx := &SQLiteIndex{db: db, name: indexName, dimension: Dimension}
	if err = idx.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize index schema: %w", err)
	}
	return idx, nil
}

func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteIndex) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS index_meta (
        name TEXT PRIMARY KEY,
        dimension INTEGER NOT NULL,
        metric TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS vectors (
        id TEXT PRIMARY KEY,
        embedding_json TEXT NOT NULL, -- JSON-encoded []float32
        metadata_json TEXT NOT NULL   -- JSON-encoded map[string]any
    );
    `
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	_, err := s.db.Exec("INSERT OR IGNORE INTO index_meta (name, dimension, metric) VALUES (?, ?, ?)",
		s.name, s.dimension, Metric)
	if err != nil {
		return err
	}

	var existing int
	err = s.db.QueryRow("SELECT dimension FROM index_meta WHERE name = ?", s.name).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to read index meta: %w", err)
	}
	if existing != s.dimension {
		return fmt.Errorf("index %q has dimension %d, expected %d", s.name, existing, s.dimension)
	}
	return nil
}

// Upsert writes the vector and metadata under id, replacing any previous
// record with that id.
func (s *SQLiteIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	if len(vector) != s.dimension {
		return fmt.Errorf("vector for %q has dimension %d, index expects %d", id, len(vector), s.dimension)
	}

	embeddingBytes, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataBytes, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO vectors (id, embedding_json, metadata_json) VALUES (?, ?, ?)",
		id, string(embeddingBytes), string(metadataBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to upsert vector %q: %v", ErrExternalService, id, err)
	}
	return nil
}

// Query ranks every stored vector against the query vector and returns the
// topK best matches in descending score order. An empty index returns an
// empty result, not an error.
func (s *SQLiteIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, embedding_json, metadata_json FROM vectors")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query vectors: %v", ErrExternalService, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			id            string
			embeddingJSON string
			metadataJSON  string
		)
		if err := rows.Scan(&id, &embeddingJSON, &metadataJSON); err != nil {
			return nil, fmt.Errorf("failed to scan vector row: %w", err)
		}

		var embedding []float32
		if err := json.Unmarshal([]byte(embeddingJSON), &embedding); err != nil {
			log.Printf("Warning: failed to unmarshal embedding for %q: %v. Skipping.", id, err)
			continue
		}

		score, err := utils.CosineSimilarity(vector, embedding)
		if err != nil {
			log.Printf("Warning: cannot score vector %q: %v. Skipping.", id, err)
			continue
		}

		var metadata map[string]any
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			log.Printf("Warning: failed to unmarshal metadata for %q: %v. Using empty metadata.", id, err)
			metadata = map[string]any{}
		}

		matches = append(matches, Match{ID: id, Score: score, Metadata: metadata})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate vectors: %v", ErrExternalService, err)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteAll removes every vector from the index. There is no soft delete.
func (s *SQLiteIndex) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM vectors"); err != nil {
		return fmt.Errorf("%w: failed to delete vectors: %v", ErrExternalService, err)
	}
	return nil
}

func (s *SQLiteIndex) Stats(ctx context.Context) (Stats, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors").Scan(&count)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: failed to count vectors: %v", ErrExternalService, err)
	}
	return Stats{TotalVectorCount: count, Dimension: s.dimension}, nil
}
