package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docubot/rag-assistant/internal/store"
)

func TestSessionResetClearsTranscriptAndHistory(t *testing.T) {
	index := newStubIndex()
	model := &stubChatModel{reply: "hi"}
	svc := NewRAGService(&hashEmbedder{}, index, testRetrieval())
	session := newSession(model)

	_, err := svc.Ask(context.Background(), session, "hello")
	require.NoError(t, err)
	require.Len(t, session.Messages(), 2)
	firstConv := model.last

	session.Reset()

	assert.Empty(t, session.Messages())
	assert.Equal(t, 2, model.created, "reset must start a fresh conversation")
	assert.NotSame(t, firstConv, model.last)
}

func TestSessionManagerLifecycle(t *testing.T) {
	manager := NewSessionManager(&stubChatModel{})

	session := manager.Create()
	require.NotEmpty(t, session.ID)

	got, err := manager.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	_, err = manager.Get("no-such-session")
	require.Error(t, err)

	manager.Delete(session.ID)
	_, err = manager.Get(session.ID)
	require.Error(t, err)
}

func TestSessionsAreIndependent(t *testing.T) {
	index := newStubIndex()
	index.matches = []store.Match{matchWithScore("a", "ctx", 0.9)}
	model := &stubChatModel{reply: "ok"}
	svc := NewRAGService(&hashEmbedder{}, index, testRetrieval())

	manager := NewSessionManager(model)
	s1 := manager.Create()
	s2 := manager.Create()

	_, err := svc.Ask(context.Background(), s1, "only in session one")
	require.NoError(t, err)

	assert.Len(t, s1.Messages(), 2)
	assert.Empty(t, s2.Messages())
}
