package httpapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

const (
	goodAccess = "good-access"
	testUserID = "11111111-1111-1111-1111-111111111111"
	bobAccess  = "bob-access"
	bobUserID  = "22222222-2222-2222-2222-222222222222"
)

var (
	errBoom   = errors.New("boom")
	fixedTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func testUser() *models.User {
	return &models.User{
		ID:        testUserID,
		UserName:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		CreatedAt: fixedTime,
	}
}

func testTask(id int64, done bool) *models.Task {
	return &models.Task{
		ID:        id,
		OwnerID:   testUserID,
		Title:     fmt.Sprintf("task %d", id),
		IsDone:    done,
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
	}
}

type fakeAccounts struct {
	registerErr error
	loginErr    error
	refreshErr  error
	revokeErr   error
	profileErr  error

	gotRegister services.RegisterInput
	gotProfile  services.ProfileInput
	gotPartial  bool
	revoked     []string
}

func (f *fakeAccounts) Register(_ context.Context, in services.RegisterInput) (*models.User, *services.TokenPair, error) {
	f.gotRegister = in
	if f.registerErr != nil {
		return nil, nil, f.registerErr
	}
	return testUser(), &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeAccounts) Login(_ context.Context, username, password string) (*models.User, *services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, nil, f.loginErr
	}
	return testUser(), &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeAccounts) RefreshAccess(_ context.Context, refresh string) (string, error) {
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return "new-access", nil
}

func (f *fakeAccounts) Revoke(_ context.Context, refresh string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, refresh)
	return nil
}

func (f *fakeAccounts) ResolveIdentity(_ context.Context, access string) (string, error) {
	switch access {
	case goodAccess:
		return testUserID, nil
	case bobAccess:
		return bobUserID, nil
	}
	return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
}

func (f *fakeAccounts) Profile(_ context.Context, userID string) (*models.User, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return testUser(), nil
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, userID string, in services.ProfileInput, partial bool) (*models.User, error) {
	f.gotProfile, f.gotPartial = in, partial
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	u := testUser()
	if in.Email != nil {
		u.Email = *in.Email
	}
	return u, nil
}

type fakeTasks struct {
	err error

	gotUser    string
	gotQuery   services.TaskQuery
	gotID      int64
	gotInput   services.TaskInput
	gotPartial bool
	page       *models.TaskPage
}

func (f *fakeTasks) List(_ context.Context, userID string, q services.TaskQuery) (*models.TaskPage, error) {
	f.gotUser, f.gotQuery = userID, q
	if f.err != nil {
		return nil, f.err
	}
	if f.page != nil {
		return f.page, nil
	}
	return &models.TaskPage{Count: 1, Page: 1, PageSize: 10, TotalPages: 1, Results: []*models.Task{testTask(1, false)}}, nil
}

func (f *fakeTasks) Get(_ context.Context, userID string, id int64) (*models.Task, error) {
	f.gotUser, f.gotID = userID, id
	if f.err != nil {
		return nil, f.err
	}
	return testTask(id, false), nil
}

func (f *fakeTasks) Create(_ context.Context, userID string, in services.TaskInput) (*models.Task, error) {
	f.gotUser, f.gotInput = userID, in
	if f.err != nil {
		return nil, f.err
	}
	t := testTask(7, false)
	if in.Title != nil {
		t.Title = *in.Title
	}
	return t, nil
}

func (f *fakeTasks) Update(_ context.Context, userID string, id int64, in services.TaskInput, partial bool) (*models.Task, error) {
	f.gotUser, f.gotID, f.gotInput, f.gotPartial = userID, id, in, partial
	if f.err != nil {
		return nil, f.err
	}
	return testTask(id, false), nil
}

func (f *fakeTasks) Delete(_ context.Context, userID string, id int64) error {
	f.gotUser, f.gotID = userID, id
	return f.err
}

func (f *fakeTasks) Toggle(_ context.Context, userID string, id int64) (*models.Task, string, error) {
	f.gotUser, f.gotID = userID, id
	if f.err != nil {
		return nil, "", f.err
	}
	return testTask(id, true), services.MsgMarkedDone, nil
}

func (f *fakeTasks) Stats(_ context.Context, userID string) (*models.TaskStats, error) {
	f.gotUser = userID
	if f.err != nil {
		return nil, f.err
	}
	return &models.TaskStats{Total: 3, Completed: 1, Pending: 2}, nil
}

type fakeChat struct {
	err     error
	gotMsg  string
	history []*models.ChatMessage
}

func (f *fakeChat) Send(_ context.Context, userID, message string) (string, error) {
	f.gotMsg = message
	if f.err != nil {
		return "", f.err
	}
	return "reply to " + message, nil
}

func (f *fakeChat) History(_ context.Context, userID string) ([]*models.ChatMessage, error) {
	return f.history, f.err
}

type fakeExporter struct{ err error }

func (f *fakeExporter) Export(_ context.Context, userID string) (*services.ExportResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.ExportResult{Key: "exports/" + userID + "/x.json", URL: "https://s3/x", ExpiresAt: fixedTime}, nil
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fixture struct {
	accounts *fakeAccounts
	tasks    *fakeTasks
	chat     *fakeChat
	exporter *fakeExporter
	pinger   fakePinger
}

func newFixture() *fixture {
	return &fixture{
		accounts: &fakeAccounts{},
		tasks:    &fakeTasks{},
		chat:     &fakeChat{},
		exporter: &fakeExporter{},
	}
}

func (f *fixture) app() *fiber.App {
	h := NewHandlers(f.accounts, f.tasks, f.chat, f.exporter, f.pinger)
	return NewServer(":0", logging.Nop{}, h).App()
}
