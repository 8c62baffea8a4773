package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

const taskColumns = `id, owner_id, title, note, is_done, due_at, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var due sql.NullTime
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Note, &t.IsDone, &due, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueAt = &d
	}
	return t, nil
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func nullTime(p *models.Task) sql.NullTime {
	if p.DueAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p.DueAt, Valid: true}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `INSERT INTO tasks (owner_id, title, note, is_done, due_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns

	return r.one(ctx, query, task.OwnerID, task.Title, task.Note, task.IsDone, nullTime(task))
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID string, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`
	return r.one(ctx, query, id, ownerID)
}

// escapeLike quotes the LIKE metacharacters so search matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// where builds the owner-scoped WHERE clause for filter.
func where(ownerID string, filter models.TaskFilter) (string, []any) {
	conds := []string{"owner_id = $1"}
	args := []any{ownerID}

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR note ILIKE $%d ESCAPE '\')`, n, n))
	}

	switch filter.Status {
	case models.TaskStatusDone:
		conds = append(conds, "is_done")
	case models.TaskStatusPending:
		conds = append(conds, "NOT is_done")
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, ownerID string, filter models.TaskFilter) ([]*models.Task, error) {
	clause, args := where(ownerID, filter)
	query := `SELECT ` + taskColumns + ` FROM tasks` + clause + ` ORDER BY is_done ASC, created_at DESC, id DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, ownerID string, filter models.TaskFilter) (int64, error) {
	clause, args := where(ownerID, filter)

	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+clause, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Update applies patch; nil fields keep their stored value.
func (r *PostgresRepository) Update(ctx context.Context, ownerID string, id int64, patch models.TaskPatch) (*models.Task, error) {
	query := `UPDATE tasks SET
			title = COALESCE($3, title),
			note = COALESCE($4, note),
			is_done = COALESCE($5, is_done),
			due_at = CASE WHEN $6::boolean THEN NULL ELSE COALESCE($7, due_at) END,
			updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + taskColumns

	var (
		title  sql.NullString
		note   sql.NullString
		isDone sql.NullBool
		due    sql.NullTime
	)
	if patch.Title != nil {
		title = sql.NullString{String: *patch.Title, Valid: true}
	}
	if patch.Note != nil {
		note = sql.NullString{String: *patch.Note, Valid: true}
	}
	if patch.IsDone != nil {
		isDone = sql.NullBool{Bool: *patch.IsDone, Valid: true}
	}
	if patch.DueAt != nil {
		due = sql.NullTime{Time: *patch.DueAt, Valid: true}
	}

	return r.one(ctx, query, id, ownerID, title, note, isDone, patch.ClearDueAt, due)
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Toggle(ctx context.Context, ownerID string, id int64) (*models.Task, error) {
	query := `UPDATE tasks SET is_done = NOT is_done, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + taskColumns

	return r.one(ctx, query, id, ownerID)
}

func (r *PostgresRepository) Stats(ctx context.Context, ownerID string) (*models.TaskStats, error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_done) FROM tasks WHERE owner_id = $1`

	s := &models.TaskStats{}
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&s.Total, &s.Completed); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.Pending = s.Total - s.Completed
	return s, nil
}
