// Package httpapi exposes the task keeper over HTTP using fiber.
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type Server struct {
	address string
	app     *fiber.App
	logger  logging.Logger
}

func NewServer(address string, l logging.Logger, h *Handlers) *Server {
	logger := l.With("module", "http_server")

	app := fiber.New(fiber.Config{
		AppName:               "taskkeeper",
		DisableStartupMessage: true,
		ErrorHandler:          NewErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{ContextKey: requestIDKey}))
	app.Use(RequestLogger(logger))

	registerRoutes(app, h)

	return &Server{address: address, app: app, logger: logger}
}

func registerRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.Health)

	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/refresh", h.Refresh)
	authRoutes.Post("/logout", h.Logout)

	auth := Authenticate(h.accounts)

	user := app.Group("/user", auth)
	user.Get("/profile", h.GetProfile)
	user.Put("/profile", h.PutProfile)
	user.Patch("/profile", h.PatchProfile)

	// Static task routes must precede /tasks/:id.
	tasks := app.Group("/tasks", auth)
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/stats", h.TaskStats)
	tasks.Get("/export", h.ExportTasks)
	tasks.Get("/:id", h.GetTask)
	tasks.Put("/:id", h.PutTask)
	tasks.Patch("/:id", h.PatchTask)
	tasks.Delete("/:id", h.DeleteTask)
	tasks.Patch("/:id/toggle", h.ToggleTask)

	chat := app.Group("/chat", auth)
	chat.Post("/", h.SendChat)
	chat.Get("/history", h.ChatHistory)
}

// App exposes the fiber application, mainly for app.Test in tests.
func (s *Server) App() *fiber.App { return s.app }

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info(context.Background(), "Starting HTTP server", "address", s.address)
	return s.app.Listen(s.address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Stopping HTTP server...")
	return s.app.ShutdownWithContext(ctx)
}
