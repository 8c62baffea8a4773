// Package refreshtokens declares the server-side repository contract for
// recording issued refresh tokens and blacklisting them on logout.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository tracks refresh tokens by jti.
type Repository interface {
	// Create records a freshly issued refresh token.
	Create(ctx context.Context, jti string, userID string, expires time.Time) error

	// Find returns the token row with its blacklist state.
	// Implementations return common.ErrorNotFound when the jti is unknown.
	Find(ctx context.Context, jti string) (*models.RefreshToken, error)

	// Blacklist appends jti to the blacklist. It reports false when the jti
	// was never recorded or is already blacklisted.
	Blacklist(ctx context.Context, jti string) (bool, error)
}
