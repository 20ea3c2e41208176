package services

import (
	"context"
	"log"

	"github.com/harentsoaR/booking-api/internal/storage"
)

// Sweeper marks booked bookings whose end has passed as completed. It
// runs lazily at the start of booking reads and creation.
type Sweeper struct {
	store storage.BookingStore
	now   Clock
}

func NewSweeper(store storage.BookingStore, now Clock) *Sweeper {
	return &Sweeper{store: store, now: now}
}

// Sweep never fails its caller; errors are logged and dropped.
func (s *Sweeper) Sweep(ctx context.Context) {
	n, err := s.store.CompleteElapsedBookings(ctx, s.now())
	if err != nil {
		log.Printf("Sweeper: failed to complete elapsed bookings: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Sweeper: marked %d booking(s) as completed.", n)
	}
}
