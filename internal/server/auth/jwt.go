// Package auth issues and verifies the JWT credential pair and hashes
// account passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims carries the token type next to the registered claims. Subject is
// the user id and ID is the jti.
type Claims struct {
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token together with the claims the caller
// usually needs to persist.
type IssuedToken struct {
	Value     string
	JTI       string
	ExpiresAt time.Time
}

type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (m *TokenManager) IssueAccess(userID string) (*IssuedToken, error) {
	return m.issue(userID, AccessToken, m.accessTTL)
}

func (m *TokenManager) IssueRefresh(userID string) (*IssuedToken, error) {
	return m.issue(userID, RefreshToken, m.refreshTTL)
}

func (m *TokenManager) issue(userID string, typ TokenType, ttl time.Duration) (*IssuedToken, error) {
	now := time.Now()
	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Value: signed, JTI: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (m *TokenManager) keyFunc(t *jwt.Token) (any, error) {
	return m.secret, nil
}

// Parse verifies signature, expiry and token type. It returns
// common.ErrMalformedToken for strings that are not our JWTs,
// common.ErrTokenExpired for expired ones and common.ErrInvalidToken for
// any other failure.
func (m *TokenManager) Parse(token string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classify(err)
	}
	if claims.TokenType != want || claims.Subject == "" || claims.ID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// ParseSignature only checks that token was signed by us; expiry is not
// enforced. Logout uses it so that expired refresh tokens can still be
// revoked.
func (m *TokenManager) ParseSignature(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, common.ErrMalformedToken
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		return common.ErrInvalidToken
	}
}
