package middleware

import (
	"log"
	"strings"

	"rentals/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie holds the signed session token.
	SessionCookie = "session"

	sessionKey = "session"
	tokenKey   = "session_token"
)

// Authenticator turns a raw token into a session.
type Authenticator func(c *gin.Context, token string) (*domain.Session, error)

// TokenFrom reads the session token from the cookie, falling back to a Bearer header.
func TokenFrom(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Session attaches the caller's session when a valid token is present.
// Requests without one continue anonymously; guards decide what needs a session.
func Session(authenticate Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFrom(c)
		if token == "" || authenticate == nil {
			c.Next()
			return
		}
		sess, err := authenticate(c, token)
		if err != nil {
			if domain.IsInternal(err) {
				log.Printf("[AUTH] action=session request_id=%s msg=%v", GetRequestID(c), err)
			}
			c.Next()
			return
		}
		c.Set(sessionKey, sess)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// CurrentSession returns the authenticated session, or nil.
func CurrentSession(c *gin.Context) *domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*domain.Session); ok {
			return s
		}
	}
	return nil
}

// CurrentToken returns the raw token the session was authenticated with.
func CurrentToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
