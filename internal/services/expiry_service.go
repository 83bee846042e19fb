package services

import (
	"context"
	"log"
	"time"
)

// ExpiryService periodically cancels pending bookings that outlived the pending TTL.
// Reads already ignore them; the sweep makes the status reflect it.
type ExpiryService struct {
	Bookings BookingService
	Interval time.Duration
}

func (s ExpiryService) Sweep(ctx context.Context) int {
	n, err := s.Bookings.ExpireStale(ctx)
	if err != nil {
		log.Printf("[EXPIRY] action=sweep cancelled=%d err=%v", n, err)
	}
	return n
}

// Run sweeps once immediately, then every Interval until ctx is done.
func (s ExpiryService) Run(ctx context.Context) {
	if s.Interval <= 0 || s.Bookings.PendingTTL <= 0 {
		log.Printf("[EXPIRY] action=disabled interval=%s ttl=%s", s.Interval, s.Bookings.PendingTTL)
		return
	}
	s.Sweep(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}
