package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"rentals/internal/auth"
	intdb "rentals/internal/db"
	"rentals/internal/domain"
	"rentals/internal/domain/models"
	"rentals/internal/repositories"
	"rentals/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// AuthService resolves the role once, at login, and seals it into the session token.
type AuthService struct {
	DB          *sql.DB
	Issuer      auth.Issuer
	Revocations auth.Revocations
	Now         func() time.Time
	RequestID   string
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

// Issued is a freshly signed session.
type Issued struct {
	Token     string
	ExpiresAt time.Time
	Session   domain.Session
}

func (s AuthService) users() repositories.UserRepository {
	return repositories.UserRepository{DB: dbOr(s.DB)}
}

func (s AuthService) hash(password string) (string, error) {
	cost := s.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(b), err
}

func (s AuthService) issue(u models.User) (Issued, error) {
	sess := u.Session()
	token, exp, err := s.Issuer.Issue(sess)
	if err != nil {
		return Issued{}, domain.InternalError{Msg: "gagal membuat token", Err: err}
	}
	return Issued{Token: token, ExpiresAt: exp, Session: sess}, nil
}

func validateCredentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", domain.ValidationError{Field: "email", Msg: "email dan password wajib diisi"}
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", domain.ValidationError{Field: "email", Msg: "format email tidak valid"}
	}
	return email, nil
}

// Signup creates a guest account and signs it in.
func (s AuthService) Signup(ctx context.Context, email, password string) (Issued, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return Issued{}, err
	}
	if len(password) < minPasswordLen {
		return Issued{}, domain.ValidationError{Field: "password", Msg: fmt.Sprintf("minimal %d karakter", minPasswordLen)}
	}
	if _, err := s.users().GetByEmail(ctx, email); err == nil {
		return Issued{}, domain.ConflictError{Resource: "user", Msg: "email sudah terdaftar"}
	} else if !isNoRows(err) {
		return Issued{}, domain.InternalError{Msg: "gagal cek user", Err: err}
	}

	hash, err := s.hash(password)
	if err != nil {
		return Issued{}, domain.InternalError{Msg: "gagal meng-hash password", Err: err}
	}
	u := models.User{Email: email, PasswordHash: hash, Role: domain.RoleUser, CreatedAt: nowOr(s.Now)}
	id, err := s.users().Create(ctx, u)
	if err != nil {
		// a concurrent signup won the uniq_email race
		if intdb.IsDuplicateKey(err) {
			return Issued{}, domain.ConflictError{Resource: "user", Msg: "email sudah terdaftar"}
		}
		return Issued{}, domain.InternalError{Msg: "gagal menyimpan user", Err: err}
	}
	u.ID = id
	utils.LogEvent(s.RequestID, "auth", "signup", fmt.Sprintf("user_id=%d", id))
	return s.issue(u)
}

// Login checks the password; when requireAdmin is set only admin accounts are accepted.
func (s AuthService) Login(ctx context.Context, email, password string, requireAdmin bool) (Issued, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return Issued{}, err
	}
	invalid := domain.UnauthorizedError{Msg: "email atau password salah"}

	u, err := s.users().GetByEmail(ctx, email)
	if err != nil {
		if isNoRows(err) {
			return Issued{}, invalid
		}
		return Issued{}, domain.InternalError{Msg: "gagal query user", Err: err}
	}
	if !u.Role.Valid() || (requireAdmin && u.Role != domain.RoleAdmin) {
		return Issued{}, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Issued{}, invalid
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d role=%s", u.ID, u.Role))
	return s.issue(u)
}

// Authenticate turns a token into a session, rejecting revoked tokens.
func (s AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	sess, _, err := s.Issuer.Parse(token)
	if err != nil {
		return nil, domain.UnauthorizedError{Msg: "sesi tidak valid"}
	}
	if s.Revocations != nil {
		revoked, err := s.Revocations.IsRevoked(ctx, sess.TokenID)
		if err != nil {
			return nil, domain.InternalError{Msg: "gagal cek sesi", Err: err}
		}
		if revoked {
			return nil, domain.UnauthorizedError{Msg: "sesi sudah berakhir"}
		}
	}
	return &sess, nil
}

// Logout revokes token until its natural expiry. Unparseable tokens are ignored.
func (s AuthService) Logout(ctx context.Context, token string) error {
	sess, exp, err := s.Issuer.Parse(token)
	if err != nil || s.Revocations == nil {
		return nil
	}
	if err := s.Revocations.Revoke(ctx, sess.TokenID, exp); err != nil {
		return domain.InternalError{Msg: "gagal logout", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "logout", fmt.Sprintf("user_id=%d", sess.UserID))
	return nil
}

// SeedAdmin creates the admin account once. An existing account with that email is left untouched.
func (s AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.users().GetByEmail(ctx, email); err == nil {
		return nil
	} else if !isNoRows(err) {
		return err
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if _, err := s.users().Create(ctx, models.User{Email: email, PasswordHash: hash, Role: domain.RoleAdmin, CreatedAt: nowOr(s.Now)}); err != nil {
		if intdb.IsDuplicateKey(err) {
			return nil
		}
		return err
	}
	utils.LogEvent(s.RequestID, "auth", "seed_admin", "email="+email)
	return nil
}
