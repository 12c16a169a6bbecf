package ledger

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically cancels pending bookings that were never
// confirmed. The source of such bookings is abandoned checkouts:
// users who created a booking but never completed payment.
type Sweeper struct {
	Ledger   *Ledger
	Interval time.Duration // how often to sweep
	MaxAge   time.Duration // pending lifetime before cancellation
	Batch    int           // max bookings cancelled per sweep
}

// Run blocks, sweeping on every tick until ctx is cancelled. Errors
// are logged and the loop keeps running; a failed sweep is retried on
// the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-s.MaxAge)
			n, err := s.Ledger.ExpirePending(ctx, cutoff, s.Batch)
			if err != nil {
				log.Printf("sweeper: expire pending bookings: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("sweeper: cancelled %d stale pending bookings", n)
			}
		}
	}
}
