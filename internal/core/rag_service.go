package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/docubot/rag-assistant/internal/config"
	"github.com/docubot/rag-assistant/internal/store"
)

// Mode says where an answer came from: retrieved document context or the
// model's general conversational ability.
type Mode string

const (
	ModeRAG  Mode = "RAG"
	ModeChat Mode = "CHAT"
)

// FallbackAnswer is returned when the model produces no candidate answer.
const FallbackAnswer = "I'm sorry, I cannot answer that."

// Answer is the routing engine's result for one question.
type Answer struct {
	Content      string   `json:"content"`
	Mode         Mode     `json:"mode"`
	RelevantDocs []string `json:"relevant_docs"`
}

// RAGService answers questions. It embeds the question, retrieves the best
// matching chunks, and routes on the top similarity score: above the
// threshold the retrieved texts become context for the model, below it the
// question goes to the model verbatim. The service only ever reads from the
// index.
type RAGService struct {
	embedder  Embedder
	index     store.Index
	topK      int
	threshold float32
}

func NewRAGService(embedder Embedder, index store.Index, retrieval config.Retrieval) *RAGService {
	return &RAGService{
		embedder:  embedder,
		index:     index,
		topK:      retrieval.TopK,
		threshold: retrieval.Threshold,
	}
}

// retrieve returns the stored texts and scores of the topK matches, in the
// index's descending-score order.
func (s *RAGService) retrieve(ctx context.Context, question string) ([]string, []float32, error) {
	queryEmbedding, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed question: %w", err)
	}

	matches, err := s.index.Query(ctx, queryEmbedding, s.topK)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query index: %w", err)
	}

	docs := make([]string, 0, len(matches))
	scores := make([]float32, 0, len(matches))
	for _, match := range matches {
		text, _ := match.Metadata["text"].(string)
		docs = append(docs, text)
		scores = append(scores, match.Score)
	}
	return docs, scores, nil
}

// Ask answers the question within the given session. Retrieval failures
// degrade to CHAT mode with no context rather than failing the question; a
// refused or failed model call degrades to the fixed fallback answer. The
// session transcript gets both the user turn and the bot turn.
func (s *RAGService) Ask(ctx context.Context, session *Session, question string) (Answer, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	relevantDocs, scores, err := s.retrieve(ctx, question)
	if err != nil {
		log.Printf("Retrieval failed for session %s, falling back to chat mode: %v", session.ID, err)
		relevantDocs, scores = nil, nil
	}

	var bestScore float32
	if len(scores) > 0 {
		bestScore = scores[0]
	}

	mode := ModeChat
	if bestScore > s.threshold {
		mode = ModeRAG
	}

	prompt := question
	if mode == ModeRAG && hasContext(relevantDocs) {
		prompt = fmt.Sprintf("Context from documents:\n%s\n\nQuestion: %s\n\nAnswer using the context above.",
			strings.Join(relevantDocs, "\n"), question)
	}

	answer := Answer{Mode: mode, RelevantDocs: []string{}}

	content, err := session.conv.Send(ctx, prompt)
	switch {
	case errors.Is(err, ErrModelRefused):
		log.Printf("Model refused to answer in session %s", session.ID)
		answer.Content = FallbackAnswer
	case err != nil:
		log.Printf("Model call failed in session %s: %v", session.ID, err)
		answer.Content = FallbackAnswer
	default:
		answer.Content = content
		if mode == ModeRAG {
			answer.RelevantDocs = relevantDocs
		}
	}

	session.messages = append(session.messages,
		Message{Role: "user", Content: question},
		Message{Role: "bot", Content: answer.Content, Mode: answer.Mode, RelevantDocs: answer.RelevantDocs},
	)
	return answer, nil
}

func hasContext(docs []string) bool {
	for _, doc := range docs {
		if doc != "" {
			return true
		}
	}
	return false
}
