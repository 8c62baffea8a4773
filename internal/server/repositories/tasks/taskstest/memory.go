// Package taskstest provides an in-memory tasks.Repository that follows the
// Postgres store's ownership, filtering and ordering rules.
package taskstest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
)

var _ tasks.Repository = (*Repository)(nil)

type Repository struct {
	mu     sync.Mutex
	rows   map[int64]*models.Task
	nextID int64
	clock  time.Time
}

func New() *Repository {
	return &Repository{
		rows:  map[int64]*models.Task{},
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so creation order is stable.
func (r *Repository) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func clone(t *models.Task) *models.Task {
	cp := *t
	if t.DueAt != nil {
		d := *t.DueAt
		cp.DueAt = &d
	}
	return &cp
}

func (r *Repository) owned(ownerID string, id int64) (*models.Task, error) {
	t, ok := r.rows[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func matches(t *models.Task, f models.TaskFilter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Note), q) {
			return false
		}
	}
	switch f.Status {
	case models.TaskStatusDone:
		return t.IsDone
	case models.TaskStatusPending:
		return !t.IsDone
	}
	return true
}

func (r *Repository) filtered(ownerID string, f models.TaskFilter) []*models.Task {
	var out []*models.Task
	for _, t := range r.rows {
		if t.OwnerID == ownerID && matches(t, f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsDone != b.IsDone {
			return !a.IsDone
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}

func (r *Repository) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t := clone(task)
	t.ID = r.nextID
	t.CreatedAt = r.tick()
	t.UpdatedAt = t.CreatedAt
	r.rows[t.ID] = t
	return clone(t), nil
}

func (r *Repository) Get(_ context.Context, ownerID string, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	return clone(t), nil
}

func (r *Repository) List(_ context.Context, ownerID string, filter models.TaskFilter) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.filtered(ownerID, filter)
	if filter.Offset >= len(rows) {
		rows = nil
	} else {
		rows = rows[filter.Offset:]
	}
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}

	out := make([]*models.Task, 0, len(rows))
	for _, t := range rows {
		out = append(out, clone(t))
	}
	return out, nil
}

func (r *Repository) Count(_ context.Context, ownerID string, filter models.TaskFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filtered(ownerID, filter))), nil
}

func (r *Repository) Update(_ context.Context, ownerID string, id int64, patch models.TaskPatch) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Note != nil {
		t.Note = *patch.Note
	}
	if patch.IsDone != nil {
		t.IsDone = *patch.IsDone
	}
	switch {
	case patch.ClearDueAt:
		t.DueAt = nil
	case patch.DueAt != nil:
		d := *patch.DueAt
		t.DueAt = &d
	}
	t.UpdatedAt = r.tick()
	return clone(t), nil
}

func (r *Repository) Delete(_ context.Context, ownerID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.owned(ownerID, id); err != nil {
		return err
	}
	delete(r.rows, id)
	return nil
}

func (r *Repository) Toggle(_ context.Context, ownerID string, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	t.IsDone = !t.IsDone
	t.UpdatedAt = r.tick()
	return clone(t), nil
}

func (r *Repository) Stats(_ context.Context, ownerID string) (*models.TaskStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := &models.TaskStats{}
	for _, t := range r.rows {
		if t.OwnerID != ownerID {
			continue
		}
		st.Total++
		if t.IsDone {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st, nil
}
