package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"rentals/internal/domain"
	"rentals/internal/domain/models"
	"rentals/internal/events"
	"rentals/internal/repositories"
	"rentals/internal/utils"
)

// ExpenseService keeps the admin's cost ledger.
type ExpenseService struct {
	DB        *sql.DB
	Events    events.Publisher
	Now       func() time.Time
	RequestID string
}

func (s ExpenseService) repo() repositories.ExpenseRepository {
	return repositories.ExpenseRepository{DB: dbOr(s.DB)}
}

func (s ExpenseService) List(ctx context.Context, f models.ExpenseFilter) ([]models.Expense, error) {
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From.Time) {
		return nil, domain.ValidationError{Field: "to", Msg: "to tidak boleh sebelum from"}
	}
	list, err := s.repo().List(ctx, f)
	if err != nil {
		return nil, domain.InternalError{Msg: "gagal memuat pengeluaran", Err: err}
	}
	return list, nil
}

// Create records an expense. A property id, when given, must exist.
func (s ExpenseService) Create(ctx context.Context, e models.Expense) (models.Expense, error) {
	e.Label = utils.NormalizeSpace(e.Label)
	if e.Date.IsZero() {
		return e, domain.ValidationError{Field: "date", Msg: "wajib diisi"}
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return e, domain.ValidationError{Field: "amount", Msg: "harus berupa angka"}
	}
	if len(e.Label) > 255 {
		return e, domain.ValidationError{Field: "label", Msg: "maksimal 255 karakter"}
	}
	if e.PropertyID != nil && *e.PropertyID <= 0 {
		e.PropertyID = nil
	}
	if e.PropertyID != nil {
		if _, err := (repositories.PropertyRepository{DB: dbOr(s.DB)}).GetByID(ctx, *e.PropertyID); err != nil {
			if isNoRows(err) {
				return e, domain.NotFoundError{Resource: "property", Err: err}
			}
			return e, domain.InternalError{Msg: "gagal memuat properti", Err: err}
		}
	}
	e.Amount = math.Round(e.Amount*100) / 100
	e.CreatedAt = nowOr(s.Now)

	id, err := s.repo().Create(ctx, e)
	if err != nil {
		return e, domain.InternalError{Msg: "gagal menyimpan pengeluaran", Err: err}
	}
	e.ID = id
	utils.LogEvent(s.RequestID, "expense", "create", fmt.Sprintf("expense_id=%d amount=%s label=%q", id, utils.FormatMoney(e.Amount), e.Label))
	publisherOr(s.Events).Publish(events.TableExpenses, events.OpInsert, e.ID, 0, e)
	return e, nil
}

func (s ExpenseService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo().Delete(ctx, id)
	if err != nil {
		return domain.InternalError{Msg: "gagal menghapus pengeluaran", Err: err}
	}
	if !ok {
		return domain.NotFoundError{Resource: "expense"}
	}
	utils.LogEvent(s.RequestID, "expense", "delete", fmt.Sprintf("expense_id=%d", id))
	publisherOr(s.Events).Publish(events.TableExpenses, events.OpDelete, id, 0, nil)
	return nil
}
