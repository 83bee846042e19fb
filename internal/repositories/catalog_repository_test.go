package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"rentals/internal/domain"
	"rentals/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPropertyUpdateOnlyTouchesPresentFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	title := "Villa"
	none := domain.Date{}
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE properties SET title=?, available_to=?, updated_at=? WHERE id=?`)).
		WithArgs("Villa", nil, now, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := PropertyRepository{DB: db}.Update(context.Background(), 3, models.PropertyUpdate{Title: &title, AvailableTo: &none}, now)
	if err != nil || !ok {
		t.Fatalf("Update ok=%v err=%v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPropertyGetByIDScansWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM properties WHERE id=\\? LIMIT 1").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "address", "price_per_night", "capacity",
			"image_url", "video_url", "available_from", "available_to", "created_at", "updated_at",
		}).AddRow(1, "Villa", "", "Jl. Pantai", 100.0, 4, "", "", from, nil, now, now))

	p, err := PropertyRepository{DB: db}.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if p.AvailableFrom.String() != "2025-06-01" || !p.AvailableTo.IsZero() {
		t.Fatalf("unexpected window: %v..%v", p.AvailableFrom, p.AvailableTo)
	}
	w := p.Window()
	if w == nil || w.End.Year() != 9999 {
		t.Fatalf("open upper bound expected, got %+v", w)
	}
}

func TestAvailabilityInRangeAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := AvailabilityRepository{DB: db}

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`start_date <= ? AND end_date >= ?`)).
		WithArgs(int64(2), "2025-08-07", "2025-08-05").
		WillReturnRows(sqlmock.NewRows([]string{"id", "property_id", "start_date", "end_date", "created_at"}).
			AddRow(1, 2, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC), now))
	mock.ExpectExec("DELETE FROM availability WHERE id=\\? AND property_id=\\?").
		WithArgs(int64(9), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	list, err := repo.InRange(context.Background(), 2, domain.DateRange{Start: domain.NewDate(2025, 8, 5), End: domain.NewDate(2025, 8, 7)})
	if err != nil || len(list) != 1 {
		t.Fatalf("InRange list=%v err=%v", list, err)
	}
	blocked := ToBlocked(list)
	if blocked[0].Source != domain.SourceUnavailable {
		t.Fatalf("expected unavailable source, got %s", blocked[0].Source)
	}

	ok, err := repo.Delete(context.Background(), 2, 9)
	if err != nil || ok {
		t.Fatalf("Delete of foreign range should match nothing, ok=%v err=%v", ok, err)
	}
}

func TestMediaNextPosition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("COALESCE\\(MAX\\(position\\), 0\\)").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(3))

	pos, err := MediaRepository{DB: db}.NextPosition(context.Background(), 4)
	if err != nil || pos != 4 {
		t.Fatalf("NextPosition pos=%d err=%v", pos, err)
	}
}

func TestUserGetByEmailLowercases(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM users WHERE email=\\?").
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "created_at"}).
			AddRow(1, "admin@example.com", "hash", "admin", time.Now()))

	u, err := UserRepository{DB: db}.GetByEmail(context.Background(), " Admin@Example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", u.Role)
	}
}
