package models

import "time"

// RefreshToken records an issued refresh JWT by its jti. A row in
// token_blacklist with the same jti makes it unusable.
type RefreshToken struct {
	JTI         string
	UserID      string
	Expires     time.Time
	CreatedAt   time.Time
	Blacklisted bool
}
