package models

import (
	"fmt"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAgent
}

// Session is a titled conversation owned by one user.
type Session struct {
	ID        string
	UserName  string
	Title     string
	CreatedAt time.Time
}

// Message is one immutable entry in a session. Messages are returned in the
// order they were appended.
type Message struct {
	SessionID string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// SessionTitle formats the display title of a session created at t.
func SessionTitle(t time.Time) string {
	return fmt.Sprintf("Chat %s", t.Format("2006-01-02 15:04"))
}
