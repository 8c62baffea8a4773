// Package services contains server-side business logic. This file implements
// UserService: registration, login, the access/refresh token lifecycle and
// profile management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
}

// ProfileInput carries the editable profile fields. Nil means unchanged.
type ProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenManager
	log         logging.Logger

	// dummyHash is verified against when the login name is unknown so that
	// both failure paths cost one argon2 run.
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      auth.NewTokenManager(cfg.SecretKey, cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration),
		log:         log,
		dummyHash:   auth.HashPassword(uuid.NewString()),
	}
}

// Register validates in, then creates the account and its first token pair
// in one transaction.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, *TokenPair, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	ve := common.NewValidationError("registration failed")
	checkUsername(ve, in.Username)
	checkEmail(ve, in.Email)
	checkName(ve, "first_name", in.FirstName)
	checkName(ve, "last_name", in.LastName)
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		ve.Add("password", "must be at least 8 characters")
	}
	if in.Password != in.PasswordConfirm {
		ve.Add("password_confirm", "passwords do not match")
	}

	repo := s.repomanager.Users(s.db)
	if _, bad := ve.Fields["username"]; !bad {
		taken, err := repo.UsernameExists(ctx, in.Username)
		if err != nil {
			return nil, nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			ve.Add("username", "a user with that username already exists")
		}
	}
	if _, bad := ve.Fields["email"]; !bad {
		taken, err := repo.EmailExists(ctx, in.Email, "")
		if err != nil {
			return nil, nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			ve.Add("email", "a user with that email already exists")
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     in.Username,
		Email:        in.Email,
		PasswordHash: auth.HashPassword(in.Password),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}

	var pair *TokenPair
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		pair, err = s.issuePair(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, nil, duplicateAccount(err)
		}
		return nil, nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, pair, nil
}

// duplicateAccount turns a unique violation that slipped past the up-front
// checks (a concurrent registration) into a field error.
func duplicateAccount(err error) error {
	ve := common.NewValidationError("registration failed")
	if strings.Contains(err.Error(), usersrepo.EmailConstraint) {
		ve.Add("email", "a user with that email already exists")
	} else {
		ve.Add("username", "a user with that username already exists")
	}
	return ve
}

// Login checks credentials and issues a new token pair. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		ve := common.NewValidationError("username and password are required")
		if username == "" {
			ve.Add("username", "this field is required")
		}
		if password == "" {
			ve.Add("password", "this field is required")
		}
		return nil, nil, ve
	}

	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = auth.VerifyPassword(password, s.dummyHash)
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, nil, common.ErrorUnauthorized
	}
	if !ok {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.issuePair(ctx, s.db, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	return user, pair, nil
}

// RefreshAccess exchanges a live, recorded, non-blacklisted refresh token
// for a new access token. The refresh token itself is not rotated.
func (s *UserService) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	rec, err := s.repomanager.RefreshTokens(s.db).Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: not issued by this server", common.ErrInvalidToken)
		}
		return "", fmt.Errorf("refresh: %w", err)
	}
	if rec.Blacklisted {
		return "", fmt.Errorf("%w: token is blacklisted", common.ErrInvalidToken)
	}
	if rec.UserID != claims.Subject {
		return "", fmt.Errorf("%w: subject mismatch", common.ErrInvalidToken)
	}

	access, err := s.tokens.IssueAccess(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return access.Value, nil
}

// Revoke blacklists a refresh token. Any refresh token carrying our
// signature is accepted, including expired, unknown or already revoked
// ones. Strings we could not have issued and access tokens are rejected
// with ErrMalformedToken.
func (s *UserService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.ParseSignature(refreshToken)
	if err != nil {
		return err
	}
	if claims.TokenType != auth.RefreshToken {
		return fmt.Errorf("%w: not a refresh token", common.ErrMalformedToken)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return nil
	}

	added, err := s.repomanager.RefreshTokens(s.db).Blacklist(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	if added {
		s.log.Info(ctx, "refresh token revoked", "user_id", claims.Subject, "jti", claims.ID)
	}
	return nil
}

// ResolveIdentity returns the user id carried by a valid access token
// whose account still exists.
func (s *UserService) ResolveIdentity(ctx context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", fmt.Errorf("%w: missing token", common.ErrorUnauthorized)
	}
	claims, err := s.tokens.Parse(accessToken, auth.AccessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("%w: user not found", common.ErrorUnauthorized)
		}
		return "", fmt.Errorf("resolve identity: %w", err)
	}
	return claims.Subject, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

// UpdateProfile changes email, first and last name. A full update
// (partial == false) requires an email.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput, partial bool) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	ve := common.NewValidationError("profile update failed")
	if in.Email != nil {
		user.Email = normalizeEmail(*in.Email)
		checkEmail(ve, user.Email)
	} else if !partial {
		ve.Add("email", "this field is required")
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
		checkName(ve, "first_name", user.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
		checkName(ve, "last_name", user.LastName)
	}

	if _, bad := ve.Fields["email"]; !bad && in.Email != nil {
		taken, err := repo.EmailExists(ctx, user.Email, userID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			ve.Add("email", "a user with that email already exists")
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	updated, err := repo.UpdateProfile(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			ve.Add("email", "a user with that email already exists")
			return nil, ve
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return updated, nil
}

// issuePair signs both tokens and records the refresh jti through db.
func (s *UserService) issuePair(ctx context.Context, db dbx.DBTX, userID string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, refresh.JTI, userID, refresh.ExpiresAt); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access.Value, RefreshToken: refresh.Value}, nil
}
