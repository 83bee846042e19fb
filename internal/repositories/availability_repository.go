package repositories

import (
	"context"
	"time"

	intconfig "rentals/internal/config"
	intdb "rentals/internal/db"
	"rentals/internal/domain"
	"rentals/internal/domain/models"
)

type AvailabilityRepository struct {
	DB intdb.DBTX
}

func (r AvailabilityRepository) db() intdb.DBTX {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// List returns every unavailability range of a property, earliest first.
func (r AvailabilityRepository) List(ctx context.Context, propertyID int64) ([]models.Unavailability, error) {
	return r.query(ctx, `SELECT id, property_id, start_date, end_date, created_at FROM availability
		WHERE property_id=? ORDER BY start_date ASC, id ASC`, propertyID)
}

// InRange returns the ranges overlapping r, touching endpoints included.
func (r AvailabilityRepository) InRange(ctx context.Context, propertyID int64, within domain.DateRange) ([]models.Unavailability, error) {
	return r.query(ctx, `SELECT id, property_id, start_date, end_date, created_at FROM availability
		WHERE property_id=? AND start_date <= ? AND end_date >= ? ORDER BY start_date ASC, id ASC`,
		propertyID, within.End.String(), within.Start.String())
}

func (r AvailabilityRepository) query(ctx context.Context, query string, args ...any) ([]models.Unavailability, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Unavailability{}
	for rows.Next() {
		var (
			u          models.Unavailability
			start, end time.Time
		)
		if err := rows.Scan(&u.ID, &u.PropertyID, &start, &end, &u.CreatedAt); err != nil {
			return out, err
		}
		u.StartDate = domain.DateOf(start)
		u.EndDate = domain.DateOf(end)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r AvailabilityRepository) Create(ctx context.Context, u models.Unavailability) (int64, error) {
	res, err := r.db().ExecContext(ctx,
		`INSERT INTO availability (property_id, start_date, end_date, created_at) VALUES (?, ?, ?, ?)`,
		u.PropertyID, u.StartDate.String(), u.EndDate.String(), u.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Delete removes a range only when it belongs to propertyID.
func (r AvailabilityRepository) Delete(ctx context.Context, propertyID, id int64) (bool, error) {
	res, err := r.db().ExecContext(ctx, `DELETE FROM availability WHERE id=? AND property_id=?`, id, propertyID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ToBlocked converts unavailability rows into blocked ranges.
func ToBlocked(list []models.Unavailability) []domain.BlockedRange {
	out := make([]domain.BlockedRange, 0, len(list))
	for _, u := range list {
		out = append(out, domain.BlockedRange{
			ID:     u.ID,
			Start:  u.StartDate,
			End:    u.EndDate,
			Source: domain.SourceUnavailable,
		})
	}
	return out
}
