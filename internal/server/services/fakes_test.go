package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/chats"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	byName map[string]*models.User
	byID   map[string]*models.User

	usernameTaken bool
	emailTaken    bool
	existsErr     error
	createErr     error
	getErr        error
	updateErr     error

	created *models.User
	updated *models.User
}

func newFakeUsers() *fakeUsersRepo {
	return &fakeUsersRepo{byName: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) add(u *models.User) {
	f.byName[u.UserName] = u
	f.byID[u.ID] = u
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.CreatedAt = time.Now()
	f.created = u
	f.add(u)
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byName[login]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, errNotFound()
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, errNotFound()
}

func (f *fakeUsersRepo) UsernameExists(context.Context, string) (bool, error) {
	return f.usernameTaken, f.existsErr
}

func (f *fakeUsersRepo) EmailExists(context.Context, string, string) (bool, error) {
	return f.emailTaken, f.existsErr
}

func (f *fakeUsersRepo) UpdateProfile(_ context.Context, u *models.User) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = u
	f.add(u)
	return u, nil
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	rows        map[string]*models.RefreshToken
	createErr   error
	findErr     error
	blacklisted []string
}

func newFakeRefresh() *fakeRefreshRepo {
	return &fakeRefreshRepo{rows: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(_ context.Context, jti, userID string, expires time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[jti] = &models.RefreshToken{JTI: jti, UserID: userID, Expires: expires}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, jti string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if r, ok := f.rows[jti]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, errNotFound()
}

func (f *fakeRefreshRepo) Blacklist(_ context.Context, jti string) (bool, error) {
	r, ok := f.rows[jti]
	if !ok || r.Blacklisted {
		return false, nil
	}
	r.Blacklisted = true
	f.blacklisted = append(f.blacklisted, jti)
	return true, nil
}

// --- tasks ---

type fakeTasksRepo struct {
	count      int64
	countErr   error
	listOut    []*models.Task
	listErr    error
	lastFilter models.TaskFilter
	listCalls  int

	createErr error
	created   *models.Task

	getOut *models.Task
	err    error

	lastPatch models.TaskPatch
	stats     *models.TaskStats
}

func (f *fakeTasksRepo) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	t.ID = 1
	f.created = t
	return t, nil
}

func (f *fakeTasksRepo) Get(context.Context, string, int64) (*models.Task, error) {
	return f.getOut, f.err
}

func (f *fakeTasksRepo) List(_ context.Context, _ string, filter models.TaskFilter) ([]*models.Task, error) {
	f.listCalls++
	f.lastFilter = filter
	return f.listOut, f.listErr
}

func (f *fakeTasksRepo) Count(_ context.Context, _ string, filter models.TaskFilter) (int64, error) {
	f.lastFilter = filter
	return f.count, f.countErr
}

func (f *fakeTasksRepo) Update(_ context.Context, _ string, id int64, patch models.TaskPatch) (*models.Task, error) {
	f.lastPatch = patch
	if f.err != nil {
		return nil, f.err
	}
	t := &models.Task{ID: id}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	return t, nil
}

func (f *fakeTasksRepo) Delete(context.Context, string, int64) error { return f.err }

func (f *fakeTasksRepo) Toggle(context.Context, string, int64) (*models.Task, error) {
	return f.getOut, f.err
}

func (f *fakeTasksRepo) Stats(context.Context, string) (*models.TaskStats, error) {
	return f.stats, f.err
}

// --- chat ---

type fakeChatRepo struct {
	recent    []*models.ChatMessage
	recentErr error
	createErr error
	limits    []int
	stored    []*models.ChatMessage
}

func (f *fakeChatRepo) Create(_ context.Context, m *models.ChatMessage) (*models.ChatMessage, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.stored = append(f.stored, m)
	return m, nil
}

func (f *fakeChatRepo) Recent(_ context.Context, _ string, limit int) ([]*models.ChatMessage, error) {
	f.limits = append(f.limits, limit)
	return f.recent, f.recentErr
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTasksRepo
	r *fakeRefreshRepo
	c *fakeChatRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository                 { return m.t }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) ChatMessages(dbx.DBTX) chats.Repository          { return m.c }

func errNotFound() error { return common.ErrorNotFound }
