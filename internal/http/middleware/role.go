package middleware

import (
	"net/http"
	"strings"

	"rentals/internal/domain"

	"github.com/gin-gonic/gin"
)

// RequireRoles only lets through sessions whose role is in allowedRoles.
// Session must run earlier in the chain. Browsers asking for HTML are redirected to
// the login page of the first allowed role instead of receiving JSON.
//
//	r.GET("/bookings", RequireRoles(domain.RoleAdmin), handler)
func RequireRoles(allowedRoles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}
	loginPath := "/login"
	if len(allowedRoles) > 0 && allowedRoles[0] == domain.RoleAdmin {
		loginPath = "/admin/login"
	}

	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			deny(c, http.StatusUnauthorized, "unauthorized", "unauthorized: sesi tidak ditemukan", loginPath)
			return
		}
		if _, ok := allowed[sess.Role]; !ok {
			deny(c, http.StatusForbidden, "forbidden", "forbidden: role tidak diizinkan", loginPath)
			return
		}
		c.Next()
	}
}

func deny(c *gin.Context, status int, code, message, loginPath string) {
	if wantsHTML(c) {
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"code":       code,
		"message":    message,
		"request_id": GetRequestID(c),
	})
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "text/html")
}
