package domain

import "strings"

// ID is used across domain entities.
type ID = int64

// Role is resolved once at login and travels inside the session token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Session carries authenticated user info when available.
type Session struct {
	UserID  ID     `json:"userId"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	TokenID string `json:"-"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Owns reports whether the session belongs to the guest with the given email.
func (s *Session) Owns(guestEmail string) bool {
	return s != nil && s.Role == RoleUser && s.Email != "" && equalFoldTrim(s.Email, guestEmail)
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
