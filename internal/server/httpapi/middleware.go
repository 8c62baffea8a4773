package httpapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/gofiber/fiber/v2"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// requestIDKey is where fiber's requestid middleware stores the id.
const requestIDKey = "requestid"

// IdentityResolver turns an access token into a user id.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (string, error)
}

// Authenticate requires a valid "Authorization: Bearer <access>" header and
// stores the caller's id in the request context.
func Authenticate(r IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := strings.CutPrefix(c.Get(common.AuthorizationHeaderName), common.BearerPrefix)
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			return fmt.Errorf("%w: missing bearer token", common.ErrorUnauthorized)
		}

		userID, err := r.ResolveIdentity(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(userIDKey, userID)
		c.SetUserContext(context.WithValue(c.UserContext(), userIDKey, userID))
		return c.Next()
	}
}

// UserIDFromContext returns the id stored by Authenticate.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

// RequestLogger logs one line per request. Errors are rendered here,
// through the app's error handler, so the logged status is the one sent.
func RequestLogger(log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		reqID, _ := c.Locals(requestIDKey).(string)
		log.Info(c.UserContext(), "http request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start).String(),
			"request_id", reqID,
		)
		return nil
	}
}
