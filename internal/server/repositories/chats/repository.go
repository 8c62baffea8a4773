// Package chats persists the exchanges between users and the completion API.
package chats

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error)
	// Recent returns up to limit exchanges of userID, newest first.
	Recent(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error)
}
