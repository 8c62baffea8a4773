package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// PageSize is the fixed number of tasks per listing page.
const PageSize = 10

const (
	MsgMarkedDone    = "Task marked as done"
	MsgMarkedPending = "Task marked as pending"
)

// TaskQuery holds the raw listing parameters as received from the client.
type TaskQuery struct {
	Search string
	Status string
	Page   string
}

// TaskInput is a create or update request. Nil fields are absent.
type TaskInput struct {
	Title      *string
	Note       *string
	IsDone     *bool
	DueAt      *time.Time
	ClearDueAt bool
}

// TaskService applies ownership and validation on top of the task store.
// Tasks of other users are reported as not found.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *TaskService {
	return &TaskService{db: db, repomanager: m, log: log}
}

// ParseStatus maps "done" and "pending" (or "open") to a filter; anything
// else means no status filter.
func ParseStatus(s string) models.TaskStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "done":
		return models.TaskStatusDone
	case "pending", "open":
		return models.TaskStatusPending
	default:
		return models.TaskStatusAny
	}
}

// ParsePage returns the requested page number, falling back to 1.
func ParsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (s *TaskService) List(ctx context.Context, userID string, q TaskQuery) (*models.TaskPage, error) {
	repo := s.repomanager.Tasks(s.db)

	filter := models.TaskFilter{
		Search: strings.TrimSpace(q.Search),
		Status: ParseStatus(q.Status),
	}

	count, err := repo.Count(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	page := ParsePage(q.Page)
	totalPages := int((count + PageSize - 1) / PageSize)
	if page > 1 && page > totalPages {
		return nil, fmt.Errorf("%w: page %d", common.ErrorNotFound, page)
	}

	filter.Limit = PageSize
	filter.Offset = (page - 1) * PageSize

	tasks, err := repo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return &models.TaskPage{
		Count:      count,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: totalPages,
		Results:    tasks,
	}, nil
}

func (s *TaskService) Get(ctx context.Context, userID string, id int64) (*models.Task, error) {
	t, err := s.repomanager.Tasks(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, in TaskInput) (*models.Task, error) {
	ve := common.NewValidationError("invalid task")

	task := &models.Task{OwnerID: userID, DueAt: in.DueAt}
	if in.Title != nil {
		task.Title = strings.TrimSpace(*in.Title)
	}
	checkTitle(ve, task.Title)
	if in.Note != nil {
		task.Note = *in.Note
	}
	if in.IsDone != nil {
		task.IsDone = *in.IsDone
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.log.Debug(ctx, "task created", "task_id", created.ID, "user_id", userID)
	return created, nil
}

// Update patches a task. A full update (partial == false) requires a title.
func (s *TaskService) Update(ctx context.Context, userID string, id int64, in TaskInput, partial bool) (*models.Task, error) {
	ve := common.NewValidationError("invalid task")

	patch := models.TaskPatch{Note: in.Note, IsDone: in.IsDone, DueAt: in.DueAt, ClearDueAt: in.ClearDueAt}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		checkTitle(ve, title)
		patch.Title = &title
	} else if !partial {
		ve.Add("title", "this field is required")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	t, err := s.repomanager.Tasks(s.db).Update(ctx, userID, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.repomanager.Tasks(s.db).Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

// Toggle flips the completion flag and returns the confirmation message
// for the new state.
func (s *TaskService) Toggle(ctx context.Context, userID string, id int64) (*models.Task, string, error) {
	t, err := s.repomanager.Tasks(s.db).Toggle(ctx, userID, id)
	if err != nil {
		return nil, "", fmt.Errorf("toggle task %d: %w", id, err)
	}
	if t.IsDone {
		return t, MsgMarkedDone, nil
	}
	return t, MsgMarkedPending, nil
}

func (s *TaskService) Stats(ctx context.Context, userID string) (*models.TaskStats, error) {
	st, err := s.repomanager.Tasks(s.db).Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	return st, nil
}
