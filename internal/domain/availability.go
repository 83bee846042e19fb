package domain

const (
	SourceBooking     = "booking"
	SourceUnavailable = "unavailable"
)

// BlockedRange is one interval during which a property cannot be booked.
type BlockedRange struct {
	ID     ID     `json:"id,omitempty"`
	Start  Date   `json:"startDate"`
	End    Date   `json:"endDate"`
	Source string `json:"source"`
}

func (b BlockedRange) Range() DateRange {
	return DateRange{Start: b.Start, End: b.End}
}

// Rejection explains why a candidate range was refused.
type Rejection struct {
	OutsideWindow bool
	Conflict      *BlockedRange
}

// CheckRange decides whether candidate can be booked against blocked and the optional window.
// It returns nil when the candidate is accepted.
func CheckRange(candidate DateRange, blocked []BlockedRange, window *DateRange) *Rejection {
	if window != nil && !window.Contains(candidate) {
		return &Rejection{OutsideWindow: true}
	}
	for i := range blocked {
		if candidate.Overlaps(blocked[i].Range()) {
			b := blocked[i]
			return &Rejection{Conflict: &b}
		}
	}
	return nil
}

// Accept is CheckRange reduced to a boolean.
func Accept(candidate DateRange, blocked []BlockedRange, window *DateRange) bool {
	return CheckRange(candidate, blocked, window) == nil
}

// Err converts a rejection into a ConflictError.
func (r *Rejection) Err() error {
	if r == nil {
		return nil
	}
	if r.OutsideWindow {
		return ConflictError{Resource: "availability", Msg: "tanggal di luar periode ketersediaan"}
	}
	return ConflictError{Resource: "availability", Msg: "tanggal tidak tersedia (" + r.Conflict.Source + " " + r.Conflict.Range().String() + ")"}
}
