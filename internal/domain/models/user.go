package models

import (
	"time"

	"rentals/internal/domain"
)

type User struct {
	ID           int64       `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"` // never sent to clients
	Role         domain.Role `json:"role"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func (u User) Session() domain.Session {
	return domain.Session{UserID: u.ID, Email: u.Email, Role: u.Role}
}
