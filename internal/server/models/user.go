// Package models defines the records persisted by the conversation store.
package models

import "time"

// User is an account created at signup. PasswordHash is an argon2id PHC
// string; the plaintext password is never stored.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
