package events

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

const (
	TableBookings     = "bookings"
	TableProperties   = "properties"
	TableAvailability = "availability"
	TableMedia        = "property_media"
	TableExpenses     = "expenses"

	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent describes one row mutation. Revision orders changes of the same row;
// rows without a revision column are ordered by Seq.
type ChangeEvent struct {
	Seq      int64           `json:"seq"`
	Table    string          `json:"table"`
	Op       string          `json:"op"`
	ID       int64           `json:"id"`
	Revision int64           `json:"revision"`
	Data     json.RawMessage `json:"data,omitempty"`
	At       time.Time       `json:"at"`
}

func (e ChangeEvent) version() int64 {
	if e.Revision > 0 {
		return e.Revision
	}
	return e.Seq
}

// Publisher is what services use to announce mutations.
type Publisher interface {
	Publish(table, op string, id, revision int64, data any)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(string, string, int64, int64, any) {}

type rowKey struct {
	table string
	id    int64
}

// Reducer keeps the latest event per (table, id). Applying the same events in any
// order, with duplicates, converges to the same state.
type Reducer struct {
	mu   sync.RWMutex
	rows map[rowKey]ChangeEvent
}

func NewReducer() *Reducer {
	return &Reducer{rows: map[rowKey]ChangeEvent{}}
}

// Apply stores e unless a same-or-newer version of the row is already known.
// It reports whether the state changed.
func (r *Reducer) Apply(e ChangeEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := rowKey{e.Table, e.ID}
	cur, ok := r.rows[k]
	if ok && !newer(e, cur) {
		return false
	}
	r.rows[k] = e
	return true
}

// newer decides between two versions of one row. A delete wins a tie so that a row
// removed at the same revision it was last updated stays removed.
func newer(e, cur ChangeEvent) bool {
	if e.version() != cur.version() {
		return e.version() > cur.version()
	}
	return e.Op == OpDelete && cur.Op != OpDelete
}

// Since returns the latest state of every row whose last change has Seq > since, in Seq order.
func (r *Reducer) Since(since int64) []ChangeEvent {
	r.mu.RLock()
	out := make([]ChangeEvent, 0, len(r.rows))
	for _, e := range r.rows {
		if e.Seq > since {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Get returns the current state of one row.
func (r *Reducer) Get(table string, id int64) (ChangeEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rows[rowKey{table, id}]
	return e, ok
}

func (r *Reducer) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
