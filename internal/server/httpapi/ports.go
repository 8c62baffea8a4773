package httpapi

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

// Accounts is the part of services.UserService the HTTP layer uses.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, username, password string) (*models.User, *services.TokenPair, error)
	RefreshAccess(ctx context.Context, refreshToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string) error
	ResolveIdentity(ctx context.Context, accessToken string) (string, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, in services.ProfileInput, partial bool) (*models.User, error)
}

type Tasks interface {
	List(ctx context.Context, userID string, q services.TaskQuery) (*models.TaskPage, error)
	Get(ctx context.Context, userID string, id int64) (*models.Task, error)
	Create(ctx context.Context, userID string, in services.TaskInput) (*models.Task, error)
	Update(ctx context.Context, userID string, id int64, in services.TaskInput, partial bool) (*models.Task, error)
	Delete(ctx context.Context, userID string, id int64) error
	Toggle(ctx context.Context, userID string, id int64) (*models.Task, string, error)
	Stats(ctx context.Context, userID string) (*models.TaskStats, error)
}

type Chat interface {
	Send(ctx context.Context, userID, message string) (string, error)
	History(ctx context.Context, userID string) ([]*models.ChatMessage, error)
}

type Exporter interface {
	Export(ctx context.Context, userID string) (*services.ExportResult, error)
}

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}
