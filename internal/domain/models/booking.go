package models

import (
	"time"

	"rentals/internal/domain"
)

// Booking is a guest reservation of a property for a closed date range.
type Booking struct {
	ID          int64                `json:"id"`
	PropertyID  int64                `json:"propertyId"`
	StartDate   domain.Date          `json:"startDate"`
	EndDate     domain.Date          `json:"endDate"`
	GuestName   string               `json:"guestName"`
	GuestEmail  string               `json:"guestEmail"`
	Guests      int                  `json:"guests"`
	Status      domain.BookingStatus `json:"status"`
	Total       float64              `json:"total"`
	PaymentLink string               `json:"paymentLink"`
	Revision    int64                `json:"revision"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

func (b Booking) Range() domain.DateRange {
	return domain.DateRange{Start: b.StartDate, End: b.EndDate}
}

// NewBooking is what a guest submits; status and total are decided server side.
type NewBooking struct {
	PropertyID int64
	Range      domain.DateRange
	GuestName  string
	GuestEmail string
	Guests     int
}
