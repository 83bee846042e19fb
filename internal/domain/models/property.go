package models

import (
	"time"

	"rentals/internal/domain"
)

// Property is one listing of the catalog.
type Property struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Address       string      `json:"address"`
	PricePerNight float64     `json:"pricePerNight"`
	Capacity      int         `json:"capacity"`
	ImageURL      string      `json:"imageUrl"`
	VideoURL      string      `json:"videoUrl"`
	AvailableFrom domain.Date `json:"availableFrom"`
	AvailableTo   domain.Date `json:"availableTo"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Window returns the availability window, or nil when the listing has none.
// A window with only one bound is open on the other side.
func (p Property) Window() *domain.DateRange {
	if p.AvailableFrom.IsZero() && p.AvailableTo.IsZero() {
		return nil
	}
	w := domain.DateRange{Start: p.AvailableFrom, End: p.AvailableTo}
	if w.Start.IsZero() {
		w.Start = domain.NewDate(1, time.January, 1)
	}
	if w.End.IsZero() {
		w.End = domain.NewDate(9999, time.December, 31)
	}
	return &w
}

// PropertyUpdate supports PATCH-style updates via key presence.
type PropertyUpdate struct {
	Title         *string
	Description   *string
	Address       *string
	PricePerNight *float64
	Capacity      *int
	ImageURL      *string
	VideoURL      *string
	AvailableFrom *domain.Date
	AvailableTo   *domain.Date
}

func (u PropertyUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Address == nil && u.PricePerNight == nil &&
		u.Capacity == nil && u.ImageURL == nil && u.VideoURL == nil && u.AvailableFrom == nil && u.AvailableTo == nil
}
