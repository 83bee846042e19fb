package domain

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a civil calendar day, stored as UTC midnight.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD, or an RFC 3339 timestamp whose date part is used.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("tanggal kosong")
	}
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("format tanggal harus YYYY-MM-DD: %q", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

const secondsPerDay = 24 * 60 * 60

// DaysUntil returns the whole number of days from d to other.
// It works on Unix seconds; time.Duration saturates after about 292 years.
func (d Date) DaysUntil(other Date) int {
	return int((DateOf(other.Time).Unix() - DateOf(d.Time).Unix()) / secondsPerDay)
}

// DateRange is a closed interval [Start, End]; both endpoints are occupied days.
type DateRange struct {
	Start Date `json:"startDate"`
	End   Date `json:"endDate"`
}

func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start.Time)
}

// Overlaps treats ranges sharing a single endpoint as overlapping.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End.Time) && !o.Start.After(r.End.Time)
}

// Contains reports whether o lies entirely inside r.
func (r DateRange) Contains(o DateRange) bool {
	return !o.Start.Before(r.Start.Time) && !o.End.After(r.End.Time)
}

// Nights is the number of nights billed for a stay, never less than one.
func (r DateRange) Nights() int {
	n := r.Start.DaysUntil(r.End)
	if n < 1 {
		return 1
	}
	return n
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}
