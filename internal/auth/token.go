package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"rentals/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("token tidak valid")

// Claims is the payload of a session token.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) Issuer {
	return Issuer{Secret: []byte(secret), TTL: ttl}
}

func (i Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Issue returns a signed token for s and its expiry.
func (i Issuer) Issue(s domain.Session) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.TTL)
	claims := Claims{
		Email: s.Email,
		Role:  s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(s.UserID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies tokenStr and returns the session it carries plus its expiry.
func (i Issuer) Parse(tokenStr string) (domain.Session, time.Time, error) {
	if tokenStr == "" {
		return domain.Session{}, time.Time{}, ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return i.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return domain.Session{}, time.Time{}, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || !claims.Role.Valid() || claims.ID == "" {
		return domain.Session{}, time.Time{}, ErrInvalidToken
	}
	return domain.Session{
		UserID:  id,
		Email:   claims.Email,
		Role:    claims.Role,
		TokenID: claims.ID,
	}, claims.ExpiresAt.Time, nil
}
