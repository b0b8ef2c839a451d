package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/docubot/rag-assistant/internal/chunker"
	"github.com/docubot/rag-assistant/internal/extract"
	"github.com/docubot/rag-assistant/internal/store"
)

const (
	// chunkingCutoff is the text length (characters) above which a document
	// is split before embedding.
	chunkingCutoff = 2000
	// storedTextLimit caps the text preview kept in chunk metadata. The full
	// chunk may be longer; only the preview is retrievable.
	storedTextLimit = 1000
)

// IngestService writes documents into the vector index: extract, chunk,
// embed, upsert.
type IngestService struct {
	embedder Embedder
	index    store.Index
	chunker  *chunker.Chunker
}

func NewIngestService(embedder Embedder, index store.Index, c *chunker.Chunker) *IngestService {
	return &IngestService{embedder: embedder, index: index, chunker: c}
}

// IngestFile extracts text from an uploaded file and ingests it. The
// filename and upload time are recorded in the chunk metadata; caller
// metadata overrides them on key conflicts.
func (s *IngestService) IngestFile(ctx context.Context, filename string, data []byte, metadata map[string]any) (int, error) {
	text, err := extract.Extract(data, filename)
	if err != nil {
		return 0, err
	}

	merged := map[string]any{
		"filename":    filename,
		"upload_time": time.Now().Unix(),
	}
	for k, v := range metadata {
		merged[k] = v
	}
	return s.IngestText(ctx, text, merged, "")
}

// IngestText embeds and stores the text, chunking it first when it exceeds
// the cutoff, and returns the number of vectors written. The first embedding
// or upsert failure aborts the rest of that document; chunks written before
// the failure stay in the index, there is no rollback.
func (s *IngestService) IngestText(ctx context.Context, text string, metadata map[string]any, docID string) (int, error) {
	if docID == "" {
		docID = fmt.Sprintf("doc_%d", time.Now().UnixMilli())
	}

	if len(text) <= chunkingCutoff {
		record := s.buildRecord(text, 0, 1, "", metadata)
		if err := s.upsertChunk(ctx, docID, text, record); err != nil {
			return 0, err
		}
		return 1, nil
	}

	chunks := s.chunker.Split(text)
	for i, chunk := range chunks {
		chunkID := fmt.Sprintf("%s_chunk_%d", docID, i)
		record := s.buildRecord(chunk, i, len(chunks), docID, metadata)
		if err := s.upsertChunk(ctx, chunkID, chunk, record); err != nil {
			return 0, fmt.Errorf("document %s aborted at chunk %d/%d: %w", docID, i, len(chunks), err)
		}
	}
	return len(chunks), nil
}

func (s *IngestService) upsertChunk(ctx context.Context, id, text string, record map[string]any) error {
	embedding, err := s.embedder.EmbedDocument(ctx, text)
	if err != nil {
		return err
	}
	return s.index.Upsert(ctx, id, embedding, record)
}

// buildRecord assembles the stored metadata for one chunk. Caller metadata
// keys win over the pipeline defaults.
func (s *IngestService) buildRecord(text string, index, total int, parentID string, metadata map[string]any) map[string]any {
	record := map[string]any{
		"text":         truncate(text, storedTextLimit),
		"chunk_index":  index,
		"total_chunks": total,
	}
	if parentID != "" {
		record["parent_id"] = parentID
	}
	for k, v := range metadata {
		record[k] = v
	}
	return record
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// sampleDocuments is the seed knowledge written into an empty index so the
// assistant has something to retrieve on first run.
var sampleDocuments = []string{
	"The company was founded in 2010. We have 500 employees.",
	"We have offices in New York, London, and Tokyo. New York is our headquarters.",
	"Our CEO is Jane Smith. She has 20 years of tech experience.",
	"We offer ChatBot Pro, RecommendAI, and DataInsight products.",
	"Our revenue is $50 million with 80% growth rate.",
	"Jane Smith previously worked at Google and Microsoft.",
	"The headquarters houses our main R&D team of 200 researchers.",
}

// SeedSamples ingests the sample documents when the index is empty. The
// zero-count guard makes seeding idempotent across restarts.
func (s *IngestService) SeedSamples(ctx context.Context) error {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read index stats before seeding: %w", err)
	}
	if stats.TotalVectorCount != 0 {
		return nil
	}

	log.Println("Index is empty, seeding sample documents...")
	for i, doc := range sampleDocuments {
		docID := fmt.Sprintf("sample_%d", i)
		metadata := map[string]any{"source": "sample", "doc_num": i}
		if _, err := s.IngestText(ctx, doc, metadata, docID); err != nil {
			log.Printf("Failed to seed sample document %s: %v. Continuing.", docID, err)
		}
	}
	return nil
}
