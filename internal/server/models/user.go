// Package models defines the server-side records persisted in PostgreSQL.
package models

import "time"

// User is an account. PasswordHash holds an encoded argon2id hash, never the
// plaintext password.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}
