package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	intconfig "rentals/internal/config"
	intdb "rentals/internal/db"
	"rentals/internal/domain"
	"rentals/internal/domain/models"
)

type PropertyRepository struct {
	DB intdb.DBTX
}

func (r PropertyRepository) db() intdb.DBTX {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const propertyColumns = `id, title, COALESCE(description, ''), address, price_per_night, capacity,
	image_url, video_url, available_from, available_to, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (models.Property, error) {
	var (
		p        models.Property
		from, to sql.NullTime
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Address, &p.PricePerNight, &p.Capacity,
		&p.ImageURL, &p.VideoURL, &from, &to, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return p, err
	}
	if from.Valid {
		p.AvailableFrom = domain.DateOf(from.Time)
	}
	if to.Valid {
		p.AvailableTo = domain.DateOf(to.Time)
	}
	return p, nil
}

// List returns every property, newest first.
func (r PropertyRepository) List(ctx context.Context) ([]models.Property, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r PropertyRepository) GetByID(ctx context.Context, id int64) (models.Property, error) {
	if id <= 0 {
		return models.Property{}, fmt.Errorf("id tidak valid")
	}
	return scanProperty(r.db().QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id=? LIMIT 1`, id))
}

// LockByID reads the property row with FOR UPDATE; only meaningful inside a transaction.
// Every writer that checks availability takes this lock first, so checks for one property run one at a time.
func (r PropertyRepository) LockByID(ctx context.Context, id int64) (models.Property, error) {
	if id <= 0 {
		return models.Property{}, fmt.Errorf("id tidak valid")
	}
	return scanProperty(r.db().QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id=? FOR UPDATE`, id))
}

func (r PropertyRepository) Create(ctx context.Context, p models.Property) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO properties (title, description, address, price_per_night, capacity, image_url, video_url, available_from, available_to, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, intdb.NullIfEmpty(p.Description), p.Address, p.PricePerNight, p.Capacity, p.ImageURL, p.VideoURL,
		intdb.NullDate(p.AvailableFrom.Time), intdb.NullDate(p.AvailableTo.Time), p.CreatedAt, p.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update applies only the fields present in u. It reports false when no row matched.
func (r PropertyRepository) Update(ctx context.Context, id int64, u models.PropertyUpdate, now time.Time) (bool, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Description != nil {
		add("description", intdb.NullIfEmpty(*u.Description))
	}
	if u.Address != nil {
		add("address", *u.Address)
	}
	if u.PricePerNight != nil {
		add("price_per_night", *u.PricePerNight)
	}
	if u.Capacity != nil {
		add("capacity", *u.Capacity)
	}
	if u.ImageURL != nil {
		add("image_url", *u.ImageURL)
	}
	if u.VideoURL != nil {
		add("video_url", *u.VideoURL)
	}
	if u.AvailableFrom != nil {
		add("available_from", intdb.NullDate(u.AvailableFrom.Time))
	}
	if u.AvailableTo != nil {
		add("available_to", intdb.NullDate(u.AvailableTo.Time))
	}
	add("updated_at", now)
	args = append(args, id)

	res, err := r.db().ExecContext(ctx, `UPDATE properties SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r PropertyRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db().ExecContext(ctx, `DELETE FROM properties WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
