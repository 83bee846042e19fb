package domain

import "fmt"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusPaying    BookingStatus = "paying"
	StatusFinalized BookingStatus = "finalized"
	StatusCancelled BookingStatus = "cancelled"
)

// Actor is who asks for a status change.
type Actor string

const (
	ActorAdmin Actor = "admin"
	ActorGuest Actor = "guest"
)

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case StatusPending, StatusPaying, StatusFinalized, StatusCancelled:
		return BookingStatus(s), nil
	default:
		return "", ValidationError{Field: "status", Msg: fmt.Sprintf("status tidak dikenal: %q", s)}
	}
}

// ActiveStatuses block a date range. Pending only counts while it is younger than the pending TTL.
var ActiveStatuses = []BookingStatus{StatusPending, StatusPaying, StatusFinalized}

func (s BookingStatus) Active() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

var allowedTransitions = map[BookingStatus]map[BookingStatus]Actor{
	StatusPending: {StatusPaying: ActorAdmin, StatusCancelled: ActorGuest},
	StatusPaying:  {StatusFinalized: ActorAdmin},
}

// CanTransition reports whether actor may move a booking from one status to another.
func CanTransition(from, to BookingStatus, actor Actor) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	who, ok := next[to]
	return ok && who == actor
}

// CheckTransition returns a ConflictError describing why a transition is refused.
func CheckTransition(from, to BookingStatus, actor Actor) error {
	if CanTransition(from, to, actor) {
		return nil
	}
	return ConflictError{
		Resource: "booking",
		Msg:      fmt.Sprintf("transisi %s -> %s tidak diizinkan untuk %s", from, to, actor),
	}
}
