package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/llm"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReplier struct {
	reply    string
	history  []llm.Exchange
	question string
	calls    int
}

func (f *fakeReplier) Reply(_ context.Context, history []llm.Exchange, question string) string {
	f.calls++
	f.history = history
	f.question = question
	return f.reply
}

func newChatService(t *testing.T, r Replier) (*ChatService, *fakeChatRepo) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	repo := &fakeChatRepo{}
	return NewChatService(db, &fakeRepoManager{c: repo}, r, logging.Nop{}), repo
}

func TestSend(t *testing.T) {
	r := &fakeReplier{reply: "answer"}
	s, repo := newChatService(t, r)
	repo.recent = []*models.ChatMessage{{Message: "q2", Response: "a2"}, {Message: "q1", Response: "a1"}}

	got, err := s.Send(context.Background(), "u1", "  what now? ")
	require.NoError(t, err)

	assert.Equal(t, "answer", got)
	assert.Equal(t, "what now?", r.question)
	assert.Equal(t, []llm.Exchange{{Message: "q2", Response: "a2"}, {Message: "q1", Response: "a1"}}, r.history)
	assert.Equal(t, []int{3}, repo.limits)
	require.Len(t, repo.stored, 1)
	assert.Equal(t, "u1", repo.stored[0].UserID)
	assert.Equal(t, "answer", repo.stored[0].Response)
}

func TestSend_FallbackReplyIsStored(t *testing.T) {
	s, repo := newChatService(t, llm.NewClient("http://127.0.0.1:1", "m", "", 0, logging.Nop{}))

	got, err := s.Send(context.Background(), "u1", "hello")
	require.NoError(t, err)
	assert.Equal(t, llm.ReplyNotConfigured, got)
	require.Len(t, repo.stored, 1)
	assert.Equal(t, llm.ReplyNotConfigured, repo.stored[0].Response)
}

func TestSend_Empty(t *testing.T) {
	r := &fakeReplier{}
	s, repo := newChatService(t, r)

	_, err := s.Send(context.Background(), "u1", "   ")
	assert.True(t, common.IsValidation(err))
	assert.Zero(t, r.calls)
	assert.Empty(t, repo.stored)
}

func TestSend_RepoErrors(t *testing.T) {
	s, repo := newChatService(t, &fakeReplier{reply: "x"})

	repo.recentErr = errBoom
	_, err := s.Send(context.Background(), "u1", "hi")
	assert.ErrorIs(t, err, errBoom)

	repo.recentErr = nil
	repo.createErr = errBoom
	_, err = s.Send(context.Background(), "u1", "hi")
	assert.ErrorIs(t, err, errBoom)
}

func TestHistory(t *testing.T) {
	s, repo := newChatService(t, &fakeReplier{})
	repo.recent = []*models.ChatMessage{{ID: 1}}

	got, err := s.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, []int{5}, repo.limits)
}
