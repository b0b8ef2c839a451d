package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Message is one turn of a session transcript.
type Message struct {
	Role         string   `json:"role"` // "user" or "bot"
	Content      string   `json:"content"`
	Mode         Mode     `json:"mode,omitempty"`
	RelevantDocs []string `json:"relevant_docs,omitempty"`
}

// Session owns the conversation state of one user: the chat handle bound to
// the model-side history and the transcript shown back to the user. State is
// in memory only and dies with the session. The mutex serializes questions:
// one is fully answered before the next is accepted.
type Session struct {
	ID string

	mu       sync.Mutex
	model    ChatModel
	conv     Conversation
	messages []Message
}

func newSession(model ChatModel) *Session {
	return &Session{
		ID:    uuid.NewString(),
		model: model,
		conv:  model.NewConversation(),
	}
}

// Reset clears the transcript and starts a fresh conversation with empty
// history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.conv = s.model.NewConversation()
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SessionManager is the registry of live sessions, keyed by session id.
type SessionManager struct {
	mu       sync.RWMutex
	model    ChatModel
	sessions map[string]*Session
}

func NewSessionManager(model ChatModel) *SessionManager {
	return &SessionManager{
		model:    model,
		sessions: make(map[string]*Session),
	}
}

func (m *SessionManager) Create() *Session {
	session := newSession(m.model)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return session
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q not found", id)
	}
	return session, nil
}

func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
