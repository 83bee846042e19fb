package models

import (
	"time"

	"rentals/internal/domain"
)

// Expense is a cost entered by the admin, optionally attached to one property.
type Expense struct {
	ID         int64       `json:"id"`
	PropertyID *int64      `json:"propertyId"`
	Date       domain.Date `json:"date"`
	Amount     float64     `json:"amount"`
	Label      string      `json:"label"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// ExpenseFilter narrows a listing; zero fields do not filter. From and To are inclusive.
type ExpenseFilter struct {
	PropertyID int64
	From       domain.Date
	To         domain.Date
}
