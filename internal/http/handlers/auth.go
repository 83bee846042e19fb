package handlers

import (
	"net/http"
	"time"

	"rentals/internal/http/middleware"
	"rentals/internal/services"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) setSessionCookie(c *gin.Context, token string, expires time.Time) {
	maxAge := -1
	if token != "" {
		maxAge = int(time.Until(expires).Seconds())
		if maxAge < 1 {
			maxAge = 1
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.CookieSecure, true)
}

func (h *Handlers) respondIssued(c *gin.Context, status int, is services.Issued) {
	h.setSessionCookie(c, is.Token, is.ExpiresAt)
	c.JSON(status, gin.H{
		"user":      is.Session,
		"token":     is.Token,
		"expiresAt": is.ExpiresAt,
	})
}

func (h *Handlers) Signup(c *gin.Context) {
	var req credentialsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	is, err := h.auth(c).Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.respondIssued(c, http.StatusCreated, is)
}

func (h *Handlers) login(c *gin.Context, requireAdmin bool) {
	var req credentialsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	is, err := h.auth(c).Login(c.Request.Context(), req.Email, req.Password, requireAdmin)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.respondIssued(c, http.StatusOK, is)
}

func (h *Handlers) Login(c *gin.Context)      { h.login(c, false) }
func (h *Handlers) AdminLogin(c *gin.Context) { h.login(c, true) }

// Logout revokes the presented token and clears the cookie. It succeeds without a session.
func (h *Handlers) Logout(c *gin.Context) {
	if token := middleware.TokenFrom(c); token != "" {
		if err := h.auth(c).Logout(c.Request.Context(), token); err != nil {
			RespondDomainError(c, err)
			return
		}
	}
	h.setSessionCookie(c, "", time.Time{})
	ok(c)
}

// Session reports the signed-in user, or null.
func Session(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": sess})
}
