// Package chunker splits long text into overlapping word windows for
// embedding.
package chunker

import "strings"

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Chunker produces overlapping chunks from a text. Note the unit mismatch:
// the threshold below which a text is kept whole is measured in characters,
// while the window and overlap are measured in words.
type Chunker struct {
	chunkSize int
	overlap   int
}

func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Split returns the chunks of text in document order. Text shorter than the
// chunk size is returned as a single chunk, unmodified. Longer text is split
// on whitespace and re-joined with single spaces, window by window; the last
// window may be shorter than the chunk size.
func (c *Chunker) Split(text string) []string {
	if len(text) < c.chunkSize {
		return []string{text}
	}

	words := strings.Fields(text)

	step := c.chunkSize - c.overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
