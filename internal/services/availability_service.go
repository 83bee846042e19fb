package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intdb "rentals/internal/db"
	"rentals/internal/domain"
	"rentals/internal/domain/models"
	"rentals/internal/events"
	"rentals/internal/repositories"
	"rentals/internal/utils"
)

// AvailabilityService merges active bookings and unavailability ranges into one blocked set
// and guards unavailability writes with the same overlap rule bookings use.
type AvailabilityService struct {
	DB         *sql.DB
	PendingTTL time.Duration
	Events     events.Publisher
	Now        func() time.Time
	RequestID  string
}

// blocked reads the blocked set of a property through q. When within is set, only
// ranges overlapping it are loaded.
func blocked(ctx context.Context, q intdb.DBTX, propertyID int64, within *domain.DateRange, cutoff time.Time) ([]domain.BlockedRange, error) {
	bookings, err := repositories.BookingRepository{DB: q}.Blocking(ctx, propertyID, within, cutoff)
	if err != nil {
		return nil, fmt.Errorf("bookings: %w", err)
	}
	ranges := repositories.AvailabilityRepository{DB: q}
	var unav []models.Unavailability
	if within != nil {
		unav, err = ranges.InRange(ctx, propertyID, *within)
	} else {
		unav, err = ranges.List(ctx, propertyID)
	}
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	return append(bookings, repositories.ToBlocked(unav)...), nil
}

// BlockedRanges is the display read path. It never fails: on a data source error it
// logs and returns an empty set, and the write path re-checks authoritatively.
func (s AvailabilityService) BlockedRanges(ctx context.Context, propertyID int64) []domain.BlockedRange {
	cutoff := pendingCutoff(nowOr(s.Now), s.PendingTTL)
	out, err := blocked(ctx, dbOr(s.DB), propertyID, nil, cutoff)
	if err != nil {
		utils.LogEvent(s.RequestID, "availability", "blocked_ranges", fmt.Sprintf("property_id=%d err=%v", propertyID, err))
		return []domain.BlockedRange{}
	}
	return out
}

// AddUnavailable declares a closed range during which the property cannot be booked.
func (s AvailabilityService) AddUnavailable(ctx context.Context, propertyID int64, r domain.DateRange) (models.Unavailability, error) {
	if !r.Valid() {
		return models.Unavailability{}, domain.ValidationError{Field: "endDate", Msg: "endDate tidak boleh sebelum startDate"}
	}
	now := nowOr(s.Now)
	u := models.Unavailability{PropertyID: propertyID, StartDate: r.Start, EndDate: r.End, CreatedAt: now}

	err := inTx(ctx, dbOr(s.DB), func(tx *sql.Tx) error {
		if _, err := (repositories.PropertyRepository{DB: tx}).LockByID(ctx, propertyID); err != nil {
			if isNoRows(err) {
				return domain.NotFoundError{Resource: "property", Err: err}
			}
			return domain.InternalError{Msg: "gagal mengunci properti", Err: err}
		}
		set, err := blocked(ctx, tx, propertyID, &r, pendingCutoff(now, s.PendingTTL))
		if err != nil {
			return domain.InternalError{Msg: "gagal membaca ketersediaan", Err: err}
		}
		if rej := domain.CheckRange(r, set, nil); rej != nil {
			return rej.Err()
		}
		id, err := repositories.AvailabilityRepository{DB: tx}.Create(ctx, u)
		if err != nil {
			return domain.InternalError{Msg: "gagal menyimpan periode", Err: err}
		}
		u.ID = id
		return nil
	})
	if err != nil {
		return models.Unavailability{}, err
	}

	utils.LogEvent(s.RequestID, "availability", "add", fmt.Sprintf("property_id=%d range_id=%d range=%s", propertyID, u.ID, r))
	publisherOr(s.Events).Publish(events.TableAvailability, events.OpInsert, u.ID, 0, u)
	return u, nil
}

func (s AvailabilityService) DeleteUnavailable(ctx context.Context, propertyID, rangeID int64) error {
	ok, err := repositories.AvailabilityRepository{DB: dbOr(s.DB)}.Delete(ctx, propertyID, rangeID)
	if err != nil {
		return domain.InternalError{Msg: "gagal menghapus periode", Err: err}
	}
	if !ok {
		return domain.NotFoundError{Resource: "availability"}
	}
	utils.LogEvent(s.RequestID, "availability", "delete", fmt.Sprintf("property_id=%d range_id=%d", propertyID, rangeID))
	publisherOr(s.Events).Publish(events.TableAvailability, events.OpDelete, rangeID, 0, nil)
	return nil
}
