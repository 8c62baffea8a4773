// Package tasks declares the task store: owner-scoped persistence for
// tasks with no business rules beyond the table constraints.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository scopes every operation by owner. Rows of other owners behave
// exactly like missing rows and yield common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Get(ctx context.Context, ownerID string, id int64) (*models.Task, error)
	// List returns tasks in default order: pending first, newest first.
	// A zero filter.Limit returns all matching rows.
	List(ctx context.Context, ownerID string, filter models.TaskFilter) ([]*models.Task, error)
	Count(ctx context.Context, ownerID string, filter models.TaskFilter) (int64, error)
	Update(ctx context.Context, ownerID string, id int64, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, ownerID string, id int64) error
	// Toggle flips is_done in a single statement.
	Toggle(ctx context.Context, ownerID string, id int64) (*models.Task, error)
	Stats(ctx context.Context, ownerID string) (*models.TaskStats, error)
}
