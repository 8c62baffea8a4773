package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/llm"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

const (
	chatContextSize = 3
	chatHistorySize = 5
)

// Replier produces the assistant's answer. It never fails; errors are
// turned into a reply text.
type Replier interface {
	Reply(ctx context.Context, history []llm.Exchange, question string) string
}

type ChatService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	replier     Replier
	log         logging.Logger
}

func NewChatService(db *sql.DB, m repomanager.RepositoryManager, r Replier, log logging.Logger) *ChatService {
	return &ChatService{db: db, repomanager: m, replier: r, log: log}
}

// Send answers message using the latest exchanges as context and stores
// the new exchange.
func (s *ChatService) Send(ctx context.Context, userID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		ve := common.NewValidationError("message must not be empty")
		ve.Add("message", "this field is required")
		return "", ve
	}

	repo := s.repomanager.ChatMessages(s.db)

	recent, err := repo.Recent(ctx, userID, chatContextSize)
	if err != nil {
		return "", fmt.Errorf("load chat context: %w", err)
	}
	history := make([]llm.Exchange, 0, len(recent))
	for _, m := range recent {
		history = append(history, llm.Exchange{Message: m.Message, Response: m.Response})
	}

	reply := s.replier.Reply(ctx, history, message)

	if _, err := repo.Create(ctx, &models.ChatMessage{UserID: userID, Message: message, Response: reply}); err != nil {
		return "", fmt.Errorf("store chat message: %w", err)
	}
	return reply, nil
}

// History returns the latest exchanges, newest first.
func (s *ChatService) History(ctx context.Context, userID string) ([]*models.ChatMessage, error) {
	msgs, err := s.repomanager.ChatMessages(s.db).Recent(ctx, userID, chatHistorySize)
	if err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	return msgs, nil
}
