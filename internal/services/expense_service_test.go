package services

import (
	"context"
	"database/sql"
	"testing"

	"rentals/internal/domain"
	"rentals/internal/domain/models"
	"rentals/internal/events"

	"github.com/DATA-DOG/go-sqlmock"
)

var expenseCols = []string{"id", "property_id", "date", "amount", "label", "created_at"}

func int64Ptr(v int64) *int64 { return &v }

func TestExpenseListAppliesFilter(t *testing.T) {
	db, mock := newSQLMock(t)
	svc := ExpenseService{DB: db}

	mock.ExpectQuery("FROM expenses WHERE 1=1 AND property_id=\\? AND date >= \\? AND date <= \\? ORDER BY date DESC").
		WithArgs(int64(2), "2025-06-01", "2025-06-30").
		WillReturnRows(sqlmock.NewRows(expenseCols).
			AddRow(5, 2, day("2025-06-20"), 80.5, "Cleaning", testNow).
			AddRow(4, nil, day("2025-06-02"), 12.0, "Internet", testNow))

	got, err := svc.List(context.Background(), models.ExpenseFilter{
		PropertyID: 2,
		From:       domain.DateOf(day("2025-06-01")),
		To:         domain.DateOf(day("2025-06-30")),
	})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].PropertyID == nil || *got[0].PropertyID != 2 || got[1].PropertyID != nil {
		t.Fatalf("unexpected expenses %+v", got)
	}
	if got[0].Date.String() != "2025-06-20" {
		t.Fatalf("date = %s", got[0].Date)
	}

	if _, err := svc.List(context.Background(), models.ExpenseFilter{
		From: domain.DateOf(day("2025-06-30")),
		To:   domain.DateOf(day("2025-06-01")),
	}); !domain.IsValidation(err) {
		t.Fatalf("reversed filter must be a validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExpenseCreate(t *testing.T) {
	db, mock := newSQLMock(t)
	rec := &recorder{}
	svc := ExpenseService{DB: db, Now: fixedNow, Events: rec}

	mock.ExpectQuery("FROM properties WHERE id=\\? LIMIT 1").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(propertyCols).
			AddRow(1, "Villa", "", "Jl. Pantai", 100.0, 2, "", "", nil, nil, testNow, testNow))
	mock.ExpectExec("INSERT INTO expenses").
		WithArgs(int64(1), "2025-06-03", 19.99, "Pool service", testNow).
		WillReturnResult(sqlmock.NewResult(9, 1))

	e, err := svc.Create(context.Background(), models.Expense{
		PropertyID: int64Ptr(1),
		Date:       domain.DateOf(day("2025-06-03")),
		Amount:     19.994,
		Label:      " Pool  service ",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if e.ID != 9 || e.Amount != 19.99 || e.Label != "Pool service" {
		t.Fatalf("unexpected expense %+v", e)
	}
	if len(rec.events) != 1 || rec.events[0].Table != events.TableExpenses || rec.events[0].Op != events.OpInsert {
		t.Fatalf("expected expense insert event, got %+v", rec.events)
	}

	// no property: stored with a NULL property id
	mock.ExpectExec("INSERT INTO expenses").
		WithArgs(nil, "2025-06-04", 0.0, "", testNow).
		WillReturnResult(sqlmock.NewResult(10, 1))
	if _, err := svc.Create(context.Background(), models.Expense{Date: domain.DateOf(day("2025-06-04"))}); err != nil {
		t.Fatalf("Create without property error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExpenseCreateRejects(t *testing.T) {
	db, mock := newSQLMock(t)
	svc := ExpenseService{DB: db, Now: fixedNow}

	if _, err := svc.Create(context.Background(), models.Expense{Amount: 10}); !domain.IsValidation(err) {
		t.Fatalf("missing date must be a validation error, got %v", err)
	}

	mock.ExpectQuery("FROM properties WHERE id=\\? LIMIT 1").WithArgs(int64(44)).WillReturnError(sql.ErrNoRows)
	_, err := svc.Create(context.Background(), models.Expense{PropertyID: int64Ptr(44), Date: domain.DateOf(day("2025-06-04"))})
	if !domain.IsNotFound(err) {
		t.Fatalf("unknown property must be not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExpenseDelete(t *testing.T) {
	db, mock := newSQLMock(t)
	rec := &recorder{}
	svc := ExpenseService{DB: db, Events: rec}

	mock.ExpectExec("DELETE FROM expenses WHERE id=\\?").WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 1))
	if err := svc.Delete(context.Background(), 9); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	mock.ExpectExec("DELETE FROM expenses WHERE id=\\?").WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := svc.Delete(context.Background(), 9); !domain.IsNotFound(err) {
		t.Fatalf("second delete must be not found, got %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].Op != events.OpDelete {
		t.Fatalf("expected one delete event, got %+v", rec.events)
	}
}
