package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/storage"
	"github.com/google/uuid"
)

// ExportLinkTTL is how long an export download link stays valid.
const ExportLinkTTL = 15 * time.Minute

type ExportResult struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

type exportedTask struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Note      string     `json:"note"`
	IsDone    bool       `json:"is_done"`
	DueAt     *time.Time `json:"due_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ExportService snapshots a user's tasks into object storage. A nil store
// disables export.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	log         logging.Logger
	now         func() time.Time
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, log logging.Logger) *ExportService {
	return &ExportService{db: db, repomanager: m, store: store, log: log, now: time.Now}
}

func exportKey(userID string, at time.Time) string {
	return fmt.Sprintf("exports/%s/%s/%s.json", userID, at.UTC().Format("2006-01-02"), uuid.NewString())
}

func (s *ExportService) Export(ctx context.Context, userID string) (*ExportResult, error) {
	if s.store == nil {
		return nil, common.ErrExportDisabled
	}

	tasks, err := s.repomanager.Tasks(s.db).List(ctx, userID, models.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	out := make([]exportedTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, exportedTask{
			ID: t.ID, Title: t.Title, Note: t.Note, IsDone: t.IsDone,
			DueAt: t.DueAt, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
		})
	}
	body, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	now := s.now()
	key := exportKey(userID, now)
	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	url, err := s.store.PresignGet(ctx, key, ExportLinkTTL)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	s.log.Info(ctx, "tasks exported", "user_id", userID, "key", key, "tasks", len(out))
	return &ExportResult{Key: key, URL: url, ExpiresAt: now.Add(ExportLinkTTL)}, nil
}
