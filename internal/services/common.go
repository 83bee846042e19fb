package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intconfig "rentals/internal/config"
	"rentals/internal/events"
)

func dbOr(db *sql.DB) *sql.DB {
	if db != nil {
		return db
	}
	return intconfig.DB
}

func nowOr(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

func publisherOr(p events.Publisher) events.Publisher {
	if p != nil {
		return p
	}
	return events.Discard{}
}

// pendingCutoff is the creation time before which a pending booking no longer blocks.
// A zero result means pending bookings never expire.
func pendingCutoff(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(-ttl)
}

// inTx runs fn inside a transaction, committing only when fn succeeds.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
