package models

import (
	"time"

	"rentals/internal/domain"
)

// Unavailability is an admin-declared range during which a property is closed.
type Unavailability struct {
	ID         int64       `json:"id"`
	PropertyID int64       `json:"propertyId"`
	StartDate  domain.Date `json:"startDate"`
	EndDate    domain.Date `json:"endDate"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func (u Unavailability) Range() domain.DateRange {
	return domain.DateRange{Start: u.StartDate, End: u.EndDate}
}
