package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"rentals/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(auth Authenticator, guard gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Session(auth))
	r.GET("/x", guard, func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	return r
}

func fixedAuth(sess *domain.Session) Authenticator {
	return func(_ *gin.Context, token string) (*domain.Session, error) {
		if token != "good" {
			return nil, domain.UnauthorizedError{}
		}
		return sess, nil
	}
}

func TestRequestIDReusesSafeHeader(t *testing.T) {
	r := newEngine(nil, func(c *gin.Context) { c.Next() })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "evil id\nforged=1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotContains(t, rec.Body.String(), "evil")
	assert.Len(t, rec.Body.String(), 36)
}

func TestTokenFromCookieThenBearer(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFrom(c))

	c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", TokenFrom(c))
}

func TestRequireRoles(t *testing.T) {
	admin := &domain.Session{UserID: 1, Email: "admin@example.com", Role: domain.RoleAdmin}
	guest := &domain.Session{UserID: 2, Email: "ana@example.com", Role: domain.RoleUser}

	cases := []struct {
		name   string
		sess   *domain.Session
		token  string
		accept string
		want   int
	}{
		{name: "admin passes", sess: admin, token: "good", want: http.StatusOK},
		{name: "guest forbidden", sess: guest, token: "good", want: http.StatusForbidden},
		{name: "bad token unauthorized", sess: admin, token: "bad", want: http.StatusUnauthorized},
		{name: "browser redirected", sess: admin, token: "", accept: "text/html", want: http.StatusFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(fixedAuth(tc.sess), RequireRoles(domain.RoleAdmin))
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			if tc.accept != "" {
				req.Header.Set("Accept", tc.accept)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusFound {
				assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
			}
		})
	}
}
