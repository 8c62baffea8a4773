// Package refreshtokens provides a PostgreSQL-backed repository for the
// refresh tokens issued by the auth service.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// PostgresRepository works over dbx.DBTX (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, jti string, userID string, expires time.Time) error {
	query := `
		INSERT INTO refresh_tokens (jti, user_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, jti, userID, expires); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, jti string) (*models.RefreshToken, error) {
	query := `
		SELECT t.jti, t.user_id, t.expires_at, t.created_at, b.jti IS NOT NULL
		FROM refresh_tokens t
		LEFT JOIN token_blacklist b ON b.jti = t.jti
		WHERE t.jti = $1
	`
	tok := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, jti).Scan(&tok.JTI, &tok.UserID, &tok.Expires, &tok.CreatedAt, &tok.Blacklisted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tok, nil
}

// Blacklist never updates an existing row; a second call for the same jti
// is a no-op.
func (r *PostgresRepository) Blacklist(ctx context.Context, jti string) (bool, error) {
	query := `
		INSERT INTO token_blacklist (jti)
		SELECT jti FROM refresh_tokens WHERE jti = $1
		ON CONFLICT (jti) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, jti)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
