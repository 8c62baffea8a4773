package models

import "time"

// ChatMessage stores one exchange with the completion API.
type ChatMessage struct {
	ID        int64
	UserID    string
	Message   string
	Response  string
	CreatedAt time.Time
}
