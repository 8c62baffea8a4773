package models

import "time"

// Task belongs to exactly one user for its whole lifetime.
type Task struct {
	ID        int64
	OwnerID   string
	Title     string
	Note      string
	IsDone    bool
	DueAt     *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskPatch lists the fields an update may change. Nil pointers mean
// "leave as is"; ClearDueAt removes the due date.
type TaskPatch struct {
	Title      *string
	Note       *string
	IsDone     *bool
	DueAt      *time.Time
	ClearDueAt bool
}

// TaskStatus narrows a task listing by completion state.
type TaskStatus int

const (
	TaskStatusAny TaskStatus = iota
	TaskStatusDone
	TaskStatusPending
)

// TaskFilter is the repository-level view of a listing request.
type TaskFilter struct {
	Search string
	Status TaskStatus
	Limit  int
	Offset int
}

// TaskStats aggregates a user's tasks.
type TaskStats struct {
	Total     int64
	Completed int64
	Pending   int64
}

// TaskPage is one page of a filtered task listing.
type TaskPage struct {
	Count      int64
	Page       int
	PageSize   int
	TotalPages int
	Results    []*Task
}
