package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rentals/internal/auth"
	"rentals/internal/domain"
	"rentals/internal/events"
	h "rentals/internal/http/handlers"
	"rentals/internal/http/middleware"
	"rentals/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	propertyCols = []string{
		"id", "title", "description", "address", "price_per_night", "capacity",
		"image_url", "video_url", "available_from", "available_to", "created_at", "updated_at",
	}
	userCols = []string{"id", "email", "password_hash", "role", "created_at"}
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	deps   *h.Handlers
	mock   sqlmock.Sqlmock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	deps := &h.Handlers{
		DB:          db,
		Issuer:      auth.NewIssuer("test-secret", time.Hour),
		Revocations: auth.NewMemoryRevocations(),
		PendingTTL:  72 * time.Hour,
		Store:       storage.LocalStore{Dir: t.TempDir(), BaseURL: "http://localhost/media"},
	}
	return &testServer{router: NewRouter(deps, Options{}), deps: deps, mock: mock}
}

func (s *testServer) token(t *testing.T, role domain.Role, email string) string {
	t.Helper()
	tok, _, err := s.deps.Issuer.Issue(domain.Session{UserID: 7, Email: email, Role: role})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, body, token string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route tidak ditemukan", decode(t, rec)["error"])
}

func TestAdminRoutesRequireAdminSession(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/bookings", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode(t, rec)["code"])

	rec = s.do(http.MethodGet, "/api/bookings", "", s.token(t, domain.RoleUser, "ana@example.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/bookings", "", "", "Accept", "text/html,application/xhtml+xml")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	rec = s.do(http.MethodGet, "/api/bookings/mine", "", "", "Accept", "text/html")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestTamperedTokenIsAnonymous(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, domain.RoleAdmin, "admin@example.com")

	rec := s.do(http.MethodGet, "/api/session", "", tok+"x")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["user"])
}

func TestListBookingsAsAdmin(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery("FROM bookings ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "property_id", "start_date", "end_date", "guest_name", "guest_email", "guests",
			"status", "total", "payment_link", "revision", "created_at", "updated_at",
		}).AddRow(1, 2, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			"Ana", "ana@example.com", 2, "pending", 500.0, "", 1, time.Now(), time.Now()))

	rec := s.do(http.MethodGet, "/api/bookings", "", s.token(t, domain.RoleAdmin, "admin@example.com"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "2025-06-10", list[0]["startDate"])
	assert.Equal(t, "pending", list[0]["status"])
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestCreateBookingValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/bookings", `{"propertyId":1,"startDate":"2025-07-01"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "validation_error", body["code"])
	fields := map[string]bool{}
	for _, d := range body["details"].([]any) {
		fields[d.(map[string]any)["field"].(string)] = true
	}
	assert.True(t, fields["endDate"])
	assert.True(t, fields["guestName"])

	rec = s.do(http.MethodPost, "/api/bookings",
		`{"propertyId":1,"startDate":"01/07/2025","endDate":"2025-07-05","guestName":"Ana","guestEmail":"ana@example.com"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "YYYY-MM-DD")

	rec = s.do(http.MethodPost, "/api/bookings", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingConflictIs409(t *testing.T) {
	s := newTestServer(t)
	now := time.Now()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery("FROM properties WHERE id=\\? FOR UPDATE").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(propertyCols).
			AddRow(3, "Villa", "", "Jl. Pantai", 100.0, 4, "", "", nil, nil, now, now))
	s.mock.ExpectQuery("SELECT id, start_date, end_date FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_date", "end_date"}))
	s.mock.ExpectQuery("FROM availability").
		WillReturnRows(sqlmock.NewRows([]string{"id", "property_id", "start_date", "end_date", "created_at"}).
			AddRow(9, 3, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC), now))
	s.mock.ExpectRollback()

	rec := s.do(http.MethodPost, "/api/bookings",
		`{"propertyId":3,"startDate":"2025-08-05","endDate":"2025-08-07","guestName":"Ana","guestEmail":"ana@example.com"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, "conflict", decode(t, rec)["code"])
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestBlockedRangesFailsOpen(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery("SELECT id, start_date, end_date FROM bookings").WillReturnError(sql.ErrConnDone)

	rec := s.do(http.MethodGet, "/api/properties/3/blocked", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetPropertyNotFound(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery("FROM properties WHERE id=\\?").WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(propertyCols))

	rec := s.do(http.MethodGet, "/api/properties/42", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/properties/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePropertyRequiresTitleAndPrice(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, domain.RoleAdmin, "admin@example.com")

	rec := s.do(http.MethodPost, "/api/properties", `{"title":"Villa"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/properties", `{"title":"Villa","pricePerNight":90,"availableFrom":"2025-13-01"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.mock.ExpectExec("INSERT INTO properties").WillReturnResult(sqlmock.NewResult(5, 1))
	rec = s.do(http.MethodPost, "/api/properties", `{"title":"Villa","pricePerNight":90}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.EqualValues(t, 5, body["id"])
	assert.EqualValues(t, 1, body["capacity"])
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestReorderRejectsNonArray(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, domain.RoleAdmin, "admin@example.com")

	rec := s.do(http.MethodPost, "/api/properties/1/media/reorder", `{"order":"3,2,1"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/properties/1/media", `{"url":"http://x/a.png","type":"gif"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownStatusIs400(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPatch, "/api/bookings/1/status", `{"status":"confirmed"}`, s.token(t, domain.RoleAdmin, "admin@example.com"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSetsCookieAndLogoutRevokes(t *testing.T) {
	s := newTestServer(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)

	s.mock.ExpectQuery("FROM users WHERE email=\\?").WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, "ana@example.com", string(hash), "user", time.Now()))

	rec := s.do(http.MethodPost, "/api/auth/login", `{"email":"Ana@Example.com","password":"rahasia123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	rec = s.do(http.MethodGet, "/api/session", "", cookie.Value)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "user", user["role"])

	rec = s.do(http.MethodPost, "/api/auth/logout", "", cookie.Value)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/session", "", cookie.Value)
	assert.Nil(t, decode(t, rec)["user"])
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestAdminLoginRejectsGuestAccount(t *testing.T) {
	s := newTestServer(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	s.mock.ExpectQuery("FROM users WHERE email=\\?").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, "ana@example.com", string(hash), "user", time.Now()))

	rec := s.do(http.MethodPost, "/api/auth/admin/login", `{"email":"ana@example.com","password":"rahasia123"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpensesAdminOnlyAndValidated(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, domain.RoleAdmin, "admin@example.com")

	rec := s.do(http.MethodGet, "/api/expenses", "", s.token(t, domain.RoleUser, "ana@example.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/expenses", `{"date":"2025-06-03","label":"Cleaning"}`, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"amount"`)

	rec = s.do(http.MethodGet, "/api/expenses?from=03-06-2025", "", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_from", decode(t, rec)["code"])

	s.mock.ExpectExec("INSERT INTO expenses").
		WithArgs(nil, "2025-06-03", 0.0, "Cleaning", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(4, 1))
	rec = s.do(http.MethodPost, "/api/expenses", `{"date":"2025-06-03","amount":0,"label":"Cleaning"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.EqualValues(t, 4, body["id"])
	assert.Nil(t, body["propertyId"])

	s.mock.ExpectExec("DELETE FROM expenses").WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))
	rec = s.do(http.MethodDelete, "/api/expenses/4", "", admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestUploadStoresFile(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, domain.RoleAdmin, "admin@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "pantai.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n0000IHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	path := body["path"].(string)
	assert.True(t, strings.HasPrefix(path, "uploads/"))
	assert.True(t, strings.HasSuffix(path, ".png"))
	assert.Equal(t, "http://localhost/media/"+path, body["url"])
	assert.Equal(t, "image", body["type"])

	dir := s.deps.Store.(storage.LocalStore).Dir
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(path)))
	assert.NoError(t, err)

	rec = s.do(http.MethodPost, "/api/upload", `{}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifyBookingWithoutSender(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/notify/booking", `{"guestEmail":"ana@example.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// nothing configured to send
	rec = s.do(http.MethodPost, "/api/notify/booking", `{"id":4,"guestEmail":"ana@example.com"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	s.deps.Templates.ClientRecap = "template_recap"
	rec = s.do(http.MethodPost, "/api/notify/booking", `{"id":4,"guestEmail":"ana@example.com"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestEventsStreamReplaysForAdmin(t *testing.T) {
	s := newTestServer(t)
	hub := events.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	s.deps.Hub = hub
	hub.Publish(events.TableBookings, events.OpInsert, 12, 1, map[string]any{"status": "pending"})

	srv := httptest.NewServer(s.router)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/admin/events?since=0"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token(t, domain.RoleAdmin, "admin@example.com"))
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var e events.ChangeEvent
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, &e))
	assert.Equal(t, events.TableBookings, e.Table)
	assert.Equal(t, int64(12), e.ID)
}
