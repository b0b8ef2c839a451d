package core

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/docubot/rag-assistant/internal/store"
)

// unitVector returns a store.Dimension-length vector along one axis.
func unitVector(axis int) []float32 {
	v := make([]float32, store.Dimension)
	v[axis%store.Dimension] = 1
	return v
}

// hashEmbedder deterministically maps a text to a unit vector, so the same
// text always embeds identically and different texts are (almost always)
// orthogonal.
type hashEmbedder struct {
	mu        sync.Mutex
	failAfter int // fail once this many embeddings have succeeded, 0 = never
	calls     int
}

func (e *hashEmbedder) embed(text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failAfter > 0 && e.calls >= e.failAfter {
		return nil, fmt.Errorf("%w: synthetic failure", ErrEmbeddingFailed)
	}
	e.calls++
	h := fnv.New32a()
	h.Write([]byte(text))
	return unitVector(int(h.Sum32() % store.Dimension)), nil
}

func (e *hashEmbedder) EmbedDocument(_ context.Context, text string) ([]float32, error) {
	return e.embed(text)
}

func (e *hashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.embed(text)
}

// stubIndex records upserts and serves canned query results.
type stubIndex struct {
	mu      sync.Mutex
	upserts map[string]map[string]any
	order   []string

	matches  []store.Match
	queryErr error
}

func newStubIndex() *stubIndex {
	return &stubIndex{upserts: make(map[string]map[string]any)}
}

func (s *stubIndex) Upsert(_ context.Context, id string, _ []float32, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.upserts[id]; !exists {
		s.order = append(s.order, id)
	}
	s.upserts[id] = metadata
	return nil
}

func (s *stubIndex) Query(_ context.Context, _ []float32, topK int) ([]store.Match, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	matches := s.matches
	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *stubIndex) DeleteAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = make(map[string]map[string]any)
	s.order = nil
	return nil
}

func (s *stubIndex) Stats(context.Context) (store.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Stats{TotalVectorCount: len(s.upserts), Dimension: store.Dimension}, nil
}

func (s *stubIndex) Close() error { return nil }

// stubConversation replays a canned reply and records prompts.
type stubConversation struct {
	reply   string
	err     error
	prompts []string
}

func (c *stubConversation) Send(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

// stubChatModel hands out stub conversations and counts them, so tests can
// observe session resets.
type stubChatModel struct {
	reply   string
	err     error
	created int
	last    *stubConversation
}

func (m *stubChatModel) NewConversation() Conversation {
	m.created++
	m.last = &stubConversation{reply: m.reply, err: m.err}
	return m.last
}
