package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"rentals/internal/auth"
	"rentals/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
)

var userCols = []string{"id", "email", "password_hash", "role", "created_at"}

func newAuthService(db *sql.DB) AuthService {
	return AuthService{
		DB:          db,
		Issuer:      auth.Issuer{Secret: []byte("test"), TTL: time.Hour},
		Revocations: auth.NewMemoryRevocations(),
		Now:         fixedNow,
		HashCost:    bcrypt.MinCost,
	}
}

func TestSignupCreatesGuestSession(t *testing.T) {
	db, mock := newSQLMock(t)
	svc := newAuthService(db)

	mock.ExpectQuery("FROM users WHERE email=\\?").WithArgs("ana@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(3, 1))

	issued, err := svc.Signup(context.Background(), " Ana@Example.com ", "longenough")
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	if issued.Session.Role != domain.RoleUser || issued.Session.UserID != 3 || issued.Token == "" {
		t.Fatalf("unexpected session %+v", issued)
	}
}

func TestSignupRejectsDuplicateAndShortPassword(t *testing.T) {
	db, mock := newSQLMock(t)
	svc := newAuthService(db)

	if _, err := svc.Signup(context.Background(), "ana@example.com", "short"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	mock.ExpectQuery("FROM users WHERE email=\\?").WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "ana@example.com", "x", "user", testNow))
	if _, err := svc.Signup(context.Background(), "ana@example.com", "longenough"); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSignupLosingUniqueEmailRaceIsConflict(t *testing.T) {
	db, mock := newSQLMock(t)
	svc := newAuthService(db)
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ana@example.com' for key 'uniq_email'"}

	mock.ExpectQuery("FROM users WHERE email=\\?").WithArgs("ana@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").WillReturnError(dup)
	if _, err := svc.Signup(context.Background(), "ana@example.com", "longenough"); !domain.IsConflict(err) {
		t.Fatalf("duplicate key must be a conflict, got %v", err)
	}

	mock.ExpectQuery("FROM users WHERE email=\\?").WithArgs("ana@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	if _, err := svc.Signup(context.Background(), "ana@example.com", "longenough"); !domain.IsInternal(err) {
		t.Fatalf("other insert errors stay internal, got %v", err)
	}

	mock.ExpectQuery("FROM users WHERE email=\\?").WithArgs("admin@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").WillReturnError(dup)
	if err := svc.SeedAdmin(context.Background(), "admin@example.com", "pw"); err != nil {
		t.Fatalf("seeding an admin created concurrently should be a no-op, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLoginResolvesRoleFromStore(t *testing.T) {
	db, mock := newSQLMock(t)
	svc := newAuthService(db)
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)

	mock.ExpectQuery("FROM users WHERE email=\\?").WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "admin@example.com", string(hash), "admin", testNow))
	issued, err := svc.Login(context.Background(), "admin@example.com", "secret123", true)
	if err != nil || !issued.Session.IsAdmin() {
		t.Fatalf("admin login issued=%+v err=%v", issued, err)
	}

	sess, err := svc.Authenticate(context.Background(), issued.Token)
	if err != nil || sess.Role != domain.RoleAdmin {
		t.Fatalf("Authenticate sess=%+v err=%v", sess, err)
	}

	if err := svc.Logout(context.Background(), issued.Token); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), issued.Token); !domain.IsUnauthorized(err) {
		t.Fatalf("revoked token must be unauthorized, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	db, mock := newSQLMock(t)
	svc := newAuthService(db)
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)

	mock.ExpectQuery("FROM users WHERE email=\\?").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(2, "ana@example.com", string(hash), "user", testNow))
	if _, err := svc.Login(context.Background(), "ana@example.com", "secret123", true); !domain.IsUnauthorized(err) {
		t.Fatalf("guest on admin login must be unauthorized, got %v", err)
	}

	mock.ExpectQuery("FROM users WHERE email=\\?").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(2, "ana@example.com", string(hash), "user", testNow))
	if _, err := svc.Login(context.Background(), "ana@example.com", "wrong", false); !domain.IsUnauthorized(err) {
		t.Fatalf("wrong password must be unauthorized, got %v", err)
	}

	mock.ExpectQuery("FROM users WHERE email=\\?").WillReturnError(sql.ErrNoRows)
	if _, err := svc.Login(context.Background(), "nobody@example.com", "x", false); !domain.IsUnauthorized(err) {
		t.Fatalf("unknown user must be unauthorized, got %v", err)
	}
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	db, mock := newSQLMock(t)
	svc := newAuthService(db)

	mock.ExpectQuery("FROM users WHERE email=\\?").WithArgs("admin@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users").
		WithArgs("admin@example.com", sqlmock.AnyArg(), "admin", testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := svc.SeedAdmin(context.Background(), "Admin@example.com", "pw"); err != nil {
		t.Fatalf("SeedAdmin error: %v", err)
	}

	mock.ExpectQuery("FROM users WHERE email=\\?").WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "admin@example.com", "x", "admin", testNow))
	if err := svc.SeedAdmin(context.Background(), "admin@example.com", "pw"); err != nil {
		t.Fatalf("second SeedAdmin error: %v", err)
	}

	if err := svc.SeedAdmin(context.Background(), "", ""); err != nil {
		t.Fatalf("empty seed should be a no-op, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
