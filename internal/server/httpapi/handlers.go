package httpapi

import (
	"strconv"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the HTTP handlers of the API.
type Handlers struct {
	accounts Accounts
	tasks    Tasks
	chat     Chat
	exporter Exporter
	db       Pinger
}

func NewHandlers(a Accounts, t Tasks, ch Chat, e Exporter, db Pinger) *Handlers {
	return &Handlers{accounts: a, tasks: t, chat: ch, exporter: e, db: db}
}

func (h *Handlers) Health(c *fiber.Ctx) error {
	if h.db != nil {
		if err := h.db.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errBadBody()
	}
	return nil
}

// taskID parses the :id route parameter. Anything that is not a positive
// integer cannot name a task and is reported as not found.
func taskID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, common.ErrorNotFound
	}
	return id, nil
}

// --- auth ---

func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, pair, err := h.accounts.Register(c.UserContext(), services.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		return err
	}

	u := newUserResponse(user)
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{User: &u, Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, pair, err := h.accounts.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	u := newUserResponse(user)
	return c.JSON(AuthResponse{User: &u, Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

func refreshField(c *fiber.Ctx) (string, error) {
	var req RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return "", err
	}
	if req.Refresh == "" {
		ve := common.NewValidationError("refresh token is required")
		ve.Add("refresh", "this field is required")
		return "", ve
	}
	return req.Refresh, nil
}

func (h *Handlers) Refresh(c *fiber.Ctx) error {
	refresh, err := refreshField(c)
	if err != nil {
		return err
	}

	access, err := h.accounts.RefreshAccess(c.UserContext(), refresh)
	if err != nil {
		return err
	}
	return c.JSON(AuthResponse{Access: access})
}

func (h *Handlers) Logout(c *fiber.Ctx) error {
	refresh, err := refreshField(c)
	if err != nil {
		return err
	}

	if err := h.accounts.Revoke(c.UserContext(), refresh); err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: "Successfully logged out"})
}

// --- profile ---

func (h *Handlers) GetProfile(c *fiber.Ctx) error {
	user, err := h.accounts.Profile(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(newUserResponse(user))
}

func (h *Handlers) updateProfile(c *fiber.Ctx, partial bool) error {
	var req ProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.UpdateProfile(c.UserContext(), currentUser(c), services.ProfileInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, partial)
	if err != nil {
		return err
	}
	return c.JSON(newUserResponse(user))
}

func (h *Handlers) PutProfile(c *fiber.Ctx) error   { return h.updateProfile(c, false) }
func (h *Handlers) PatchProfile(c *fiber.Ctx) error { return h.updateProfile(c, true) }
