package httpapi

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type ProfileRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// OptionalTime tells an absent JSON field apart from an explicit null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

type TaskRequest struct {
	Title  *string      `json:"title"`
	Note   *string      `json:"note"`
	IsDone *bool        `json:"is_done"`
	DueAt  OptionalTime `json:"due_at"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	DateJoined time.Time `json:"date_joined"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.UserName,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		DateJoined: u.CreatedAt,
	}
}

type AuthResponse struct {
	User    *UserResponse `json:"user,omitempty"`
	Access  string        `json:"access"`
	Refresh string        `json:"refresh,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TaskResponse struct {
	ID        int64      `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Title     string     `json:"title"`
	Note      string     `json:"note"`
	IsDone    bool       `json:"is_done"`
	DueAt     *time.Time `json:"due_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func newTaskResponse(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Title:     t.Title,
		Note:      t.Note,
		IsDone:    t.IsDone,
		DueAt:     t.DueAt,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// TaskPageResponse mirrors models.TaskPage; Next and Previous are page
// numbers or null.
type TaskPageResponse struct {
	Count      int64          `json:"count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
	Next       *int           `json:"next"`
	Previous   *int           `json:"previous"`
	Results    []TaskResponse `json:"results"`
}

func newTaskPageResponse(p *models.TaskPage) TaskPageResponse {
	out := TaskPageResponse{
		Count:      p.Count,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		Results:    make([]TaskResponse, 0, len(p.Results)),
	}
	if p.Page < p.TotalPages {
		n := p.Page + 1
		out.Next = &n
	}
	if p.Page > 1 {
		n := p.Page - 1
		out.Previous = &n
	}
	for _, t := range p.Results {
		out.Results = append(out.Results, newTaskResponse(t))
	}
	return out
}

type ToggleResponse struct {
	Task    TaskResponse `json:"task"`
	Message string       `json:"message"`
}

type StatsResponse struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

type ExportResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ChatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
}

type ChatHistoryItem struct {
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	History []ChatHistoryItem `json:"history"`
}
