package repositories

import (
	"context"

	intconfig "rentals/internal/config"
	intdb "rentals/internal/db"
	"rentals/internal/domain/models"
)

type MediaRepository struct {
	DB intdb.DBTX
}

func (r MediaRepository) db() intdb.DBTX {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// List returns a property's gallery: explicit position first, newest first among equals.
func (r MediaRepository) List(ctx context.Context, propertyID int64) ([]models.Media, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT id, property_id, url, type, position, created_at
		FROM property_media WHERE property_id=? ORDER BY position ASC, created_at DESC, id DESC`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Media{}
	for rows.Next() {
		var m models.Media
		if err := rows.Scan(&m.ID, &m.PropertyID, &m.URL, &m.Type, &m.Position, &m.CreatedAt); err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// NextPosition returns the position a newly appended item should take.
func (r MediaRepository) NextPosition(ctx context.Context, propertyID int64) (int, error) {
	var max int
	err := r.db().QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM property_media WHERE property_id=?`, propertyID).Scan(&max)
	return max + 1, err
}

func (r MediaRepository) Create(ctx context.Context, m models.Media) (int64, error) {
	res, err := r.db().ExecContext(ctx,
		`INSERT INTO property_media (property_id, url, type, position, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.PropertyID, m.URL, m.Type, m.Position, m.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r MediaRepository) Delete(ctx context.Context, propertyID, id int64) (bool, error) {
	res, err := r.db().ExecContext(ctx, `DELETE FROM property_media WHERE id=? AND property_id=?`, id, propertyID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r MediaRepository) SetPosition(ctx context.Context, propertyID, id int64, position int) (bool, error) {
	res, err := r.db().ExecContext(ctx,
		`UPDATE property_media SET position=? WHERE id=? AND property_id=?`, position, id, propertyID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
