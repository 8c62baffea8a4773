// Package server wires the taskkeeper HTTP service together: configuration,
// logging, the PostgreSQL pool and migrations, services, the LLM client, the
// optional S3 export store, and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/taskkeeper/internal/server/llm"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/dmitrijs2005/taskkeeper/internal/server/storage"
)

const shutdownTimeout = 30 * time.Second

// httpServer is the part of httpapi.Server the App drives.
type httpServer interface {
	Run() error
	Shutdown(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     io.Closer
	server httpServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if !c.ChatEnabled() {
		logger.Warn(ctx, "completion API key is not set, chat will answer with a fallback reply")
	}
	replier := llm.NewClient(c.GeminiBaseURL, c.GeminiModel, c.GeminiAPIKey, c.ChatTimeout, logger)

	// A nil interface, not a typed nil, turns export off.
	var store storage.ObjectStore
	if c.ExportEnabled() {
		s3, err := storage.NewS3Store(ctx, storage.Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		store = s3
	} else {
		logger.Info(ctx, "S3 bucket is not set, task export is disabled")
	}

	h := httpapi.NewHandlers(
		services.NewUserService(db, rm, c, logger),
		services.NewTaskService(db, rm, logger),
		services.NewChatService(db, rm, replier, logger),
		services.NewExportService(db, rm, store, logger),
		db,
	)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		server: httpapi.NewServer(c.HTTPAddr, logger, h),
	}, nil
}

// Run serves HTTP until a termination signal arrives or the listener fails,
// and returns the process exit code.
func (app *App) Run(ctx context.Context) int {
	app.logger.Info(ctx, "Starting app...")

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.server.Run()
	}()

	// GracefulShutdown runs its operations concurrently; stop orders them.
	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, map[string]gfshutdown.Operation{
		"http": app.stop,
	})

	select {
	case code := <-wait:
		app.logger.Info(ctx, "App stopped", "exit_code", code)
		return code
	case err := <-listenErr:
		if err == nil {
			// Listen returns nil once shutdown has begun.
			return <-wait
		}
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		_ = app.db.Close()
		return 1
	}
}

// stop drains the HTTP server first and closes the database afterwards.
func (app *App) stop(ctx context.Context) error {
	srvErr := app.server.Shutdown(ctx)

	app.logger.Info(ctx, "Closing database...")
	dbErr := app.db.Close()

	return errors.Join(srvErr, dbErr)
}
