package repositories

import (
	"context"
	"strings"

	intconfig "rentals/internal/config"
	intdb "rentals/internal/db"
	"rentals/internal/domain"
	"rentals/internal/domain/models"
)

type UserRepository struct {
	DB intdb.DBTX
}

func (r UserRepository) db() intdb.DBTX {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var (
		u    models.User
		role string
	)
	err := r.db().QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE email=? LIMIT 1`,
		normalizeEmail(email),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	u.Role = domain.Role(role)
	return u, err
}

func (r UserRepository) Create(ctx context.Context, u models.User) (int64, error) {
	res, err := r.db().ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, created_at) VALUES (?, ?, ?, ?)`,
		normalizeEmail(u.Email), u.PasswordHash, string(u.Role), u.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

