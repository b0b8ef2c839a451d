package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultChatModelName      = "gemini-2.0-flash"
	defaultEmbeddingModelName = "text-embedding-004"

	chatSystemInstruction = "You are a helpful assistant with access to documents. " +
		"When context is provided, use it to answer accurately. " +
		"When no context is provided, answer based on general knowledge. " +
		"Remember previous conversation details."
)

var (
	// ErrEmbeddingFailed wraps failures of the embedding capability.
	ErrEmbeddingFailed = errors.New("embedding failed")
	// ErrModelRefused is returned when the chat model produced no candidate
	// answer for a prompt.
	ErrModelRefused = errors.New("model produced no answer")
)

// Embedder converts text to fixed-dimension vectors. Document and query
// embeddings are asymmetric: the backing model encodes them differently so
// that queries land near the documents that answer them.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Conversation is a stateful chat handle bound to a growing history. The
// handle itself carries prior turns; callers send only the new prompt.
type Conversation interface {
	Send(ctx context.Context, prompt string) (string, error)
}

// ChatModel creates fresh conversations with empty history.
type ChatModel interface {
	NewConversation() Conversation
}

// LLMService is the gateway to Gemini: embeddings for ingestion and
// retrieval, chat sessions for answering. It implements Embedder and
// ChatModel.
type LLMService struct {
	client *genai.Client
}

func NewLLMService(ctx context.Context, apiKey string) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{client: client}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

func (s *LLMService) embed(ctx context.Context, text string, taskType genai.TaskType) ([]float32, error) {
	em := s.client.EmbeddingModel(defaultEmbeddingModelName)
	em.TaskType = taskType
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embedding request: %v", ErrEmbeddingFailed, err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding data received from gemini", ErrEmbeddingFailed)
	}
	return res.Embedding.Values, nil
}

func (s *LLMService) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, text, genai.TaskTypeRetrievalDocument)
}

func (s *LLMService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, text, genai.TaskTypeRetrievalQuery)
}

// NewConversation starts a chat session with empty history. The genai
// session accumulates turns internally, so the routing engine never re-sends
// prior messages.
func (s *LLMService) NewConversation() Conversation {
	model := s.client.GenerativeModel(defaultChatModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(chatSystemInstruction)},
	}

	temp := float32(0.7)
	topP := float32(0.95)
	maxTokens := int32(2048)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: &maxTokens,
	}

	return &geminiConversation{session: model.StartChat()}
}

type geminiConversation struct {
	session *genai.ChatSession
}

func (c *geminiConversation) Send(ctx context.Context, prompt string) (string, error) {
	resp, err := c.session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrModelRefused
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	if responseText.Len() == 0 {
		return "", ErrModelRefused
	}
	return responseText.String(), nil
}
