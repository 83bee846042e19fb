package repositories

import (
	"context"
	"database/sql"
	"time"

	intconfig "rentals/internal/config"
	intdb "rentals/internal/db"
	"rentals/internal/domain"
	"rentals/internal/domain/models"
)

type ExpenseRepository struct {
	DB intdb.DBTX
}

func (r ExpenseRepository) db() intdb.DBTX {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// List returns the expenses matching f, latest date first.
func (r ExpenseRepository) List(ctx context.Context, f models.ExpenseFilter) ([]models.Expense, error) {
	query := `SELECT id, property_id, date, amount, label, created_at FROM expenses WHERE 1=1`
	args := []any{}
	if f.PropertyID > 0 {
		query += ` AND property_id=?`
		args = append(args, f.PropertyID)
	}
	if !f.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.To.String())
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Expense{}
	for rows.Next() {
		var (
			e          models.Expense
			propertyID sql.NullInt64
			date       time.Time
		)
		if err := rows.Scan(&e.ID, &propertyID, &date, &e.Amount, &e.Label, &e.CreatedAt); err != nil {
			return out, err
		}
		if propertyID.Valid {
			id := propertyID.Int64
			e.PropertyID = &id
		}
		e.Date = domain.DateOf(date)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r ExpenseRepository) Create(ctx context.Context, e models.Expense) (int64, error) {
	var propertyID any
	if e.PropertyID != nil {
		propertyID = *e.PropertyID
	}
	res, err := r.db().ExecContext(ctx,
		`INSERT INTO expenses (property_id, date, amount, label, created_at) VALUES (?, ?, ?, ?, ?)`,
		propertyID, e.Date.String(), e.Amount, e.Label, e.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r ExpenseRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db().ExecContext(ctx, `DELETE FROM expenses WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
