package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	intconfig "rentals/internal/config"
	intdb "rentals/internal/db"
	"rentals/internal/domain"
	"rentals/internal/domain/models"
)

type BookingRepository struct {
	DB intdb.DBTX
}

func (r BookingRepository) db() intdb.DBTX {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id, property_id, start_date, end_date, guest_name, guest_email, guests,
	status, total, payment_link, revision, created_at, updated_at`

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b          models.Booking
		start, end time.Time
		status     string
	)
	if err := row.Scan(
		&b.ID, &b.PropertyID, &start, &end, &b.GuestName, &b.GuestEmail, &b.Guests,
		&status, &b.Total, &b.PaymentLink, &b.Revision, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return b, err
	}
	b.StartDate = domain.DateOf(start)
	b.EndDate = domain.DateOf(end)
	b.Status = domain.BookingStatus(status)
	return b, nil
}

// ActiveClause is the single definition of "this booking blocks dates" used by every query.
// Pending rows only count while created after pendingCutoff; a zero cutoff disables expiry.
func ActiveClause(pendingCutoff time.Time) (string, []any) {
	if pendingCutoff.IsZero() {
		return `status IN ('pending', 'paying', 'finalized')`, nil
	}
	return `(status IN ('paying', 'finalized') OR (status = 'pending' AND created_at >= ?))`, []any{pendingCutoff}
}

func (r BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Blocking lists the active bookings of a property as blocked ranges.
// When within is non-nil only bookings overlapping it are returned (closed-interval rule).
func (r BookingRepository) Blocking(ctx context.Context, propertyID int64, within *domain.DateRange, pendingCutoff time.Time) ([]domain.BlockedRange, error) {
	clause, args := ActiveClause(pendingCutoff)
	query := `SELECT id, start_date, end_date FROM bookings WHERE property_id=? AND ` + clause
	args = append([]any{propertyID}, args...)
	if within != nil {
		query += ` AND start_date <= ? AND end_date >= ?`
		args = append(args, within.End.String(), within.Start.String())
	}
	query += ` ORDER BY start_date ASC, id ASC`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.BlockedRange{}
	for rows.Next() {
		var (
			id         int64
			start, end time.Time
		)
		if err := rows.Scan(&id, &start, &end); err != nil {
			return out, err
		}
		out = append(out, domain.BlockedRange{
			ID:     id,
			Start:  domain.DateOf(start),
			End:    domain.DateOf(end),
			Source: domain.SourceBooking,
		})
	}
	return out, rows.Err()
}

func (r BookingRepository) Create(ctx context.Context, b models.Booking) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO bookings (property_id, start_date, end_date, guest_name, guest_email, guests, status, total, payment_link, revision, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		b.PropertyID, b.StartDate.String(), b.EndDate.String(), b.GuestName, b.GuestEmail, b.Guests,
		string(b.Status), b.Total, b.PaymentLink, b.CreatedAt, b.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, fmt.Errorf("id tidak valid")
	}
	return scanBooking(r.db().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id))
}

// List returns all bookings, newest first.
func (r BookingRepository) List(ctx context.Context) ([]models.Booking, error) {
	return r.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, id DESC`)
}

// ListByEmail returns the bookings of one guest, newest first.
func (r BookingRepository) ListByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	return r.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE LOWER(guest_email)=? ORDER BY created_at DESC, id DESC`,
		strings.ToLower(strings.TrimSpace(email)),
	)
}

// UpdateStatus moves a booking from one status to another only if it is still in from.
// It reports false when the row was missing or its status had already changed.
func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, now time.Time) (bool, error) {
	res, err := r.db().ExecContext(ctx,
		`UPDATE bookings SET status=?, revision=revision+1, updated_at=? WHERE id=? AND status=?`,
		string(to), now, id, string(from),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r BookingRepository) SetPaymentLink(ctx context.Context, id int64, link string, now time.Time) (bool, error) {
	res, err := r.db().ExecContext(ctx,
		`UPDATE bookings SET payment_link=?, revision=revision+1, updated_at=? WHERE id=?`,
		link, now, id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// StalePending lists pending bookings created before cutoff.
func (r BookingRepository) StalePending(ctx context.Context, cutoff time.Time) ([]int64, error) {
	rows, err := r.db().QueryContext(ctx,
		`SELECT id FROM bookings WHERE status='pending' AND created_at < ? ORDER BY id ASC`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

