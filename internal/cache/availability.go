// Package cache provides a Redis-backed cache for seat availability.
// Availability answers are the hottest read path and tolerate a few
// seconds of staleness; the booking flow always re-checks inside a
// transaction before claiming seats.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/movietix/booking-api/internal/config"
)

// availabilityEntry is the cached JSON payload for one showtime.
type availabilityEntry struct {
	Count uint32   `json:"count"`
	Seats []string `json:"seats"`
}

// Availability caches per-showtime seat availability.  A nil Redis client
// or a disabled config turns every method into a no-op so callers never
// branch on cache presence.
type Availability struct {
	rdb *redis.Client
	cfg config.AvailabilityCacheConfig
}

// NewAvailability builds an Availability cache.  rdb may be nil.
func NewAvailability(rdb *redis.Client, cfg config.AvailabilityCacheConfig) *Availability {
	return &Availability{rdb: rdb, cfg: cfg}
}

func (a *Availability) enabled() bool {
	return a != nil && a.rdb != nil && a.cfg.Enabled
}

func (a *Availability) key(showtimeID uint64) string {
	return fmt.Sprintf("%s:showtime:%d", a.cfg.Prefix, showtimeID)
}

// Get returns the cached availability for a showtime.  The second return
// value reports whether a usable entry was found.
func (a *Availability) Get(ctx context.Context, showtimeID uint64) (uint32, []string, bool) {
	if !a.enabled() {
		return 0, nil, false
	}
	bs, err := a.rdb.Get(ctx, a.key(showtimeID)).Bytes()
	if err != nil {
		return 0, nil, false
	}
	var e availabilityEntry
	if err := json.Unmarshal(bs, &e); err != nil {
		return 0, nil, false
	}
	return e.Count, e.Seats, true
}

// Set stores availability for a showtime with the configured TTL.
// Failures are swallowed; the cache is best effort.
func (a *Availability) Set(ctx context.Context, showtimeID uint64, count uint32, seats []string) {
	if !a.enabled() {
		return
	}
	bs, err := json.Marshal(availabilityEntry{Count: count, Seats: seats})
	if err != nil {
		return
	}
	_ = a.rdb.SetEx(ctx, a.key(showtimeID), bs, a.cfg.TTL).Err()
}

// Invalidate drops the cached entry for a showtime.  Called after any
// confirmation or cancellation that changes seat occupancy.
func (a *Availability) Invalidate(ctx context.Context, showtimeID uint64) {
	if !a.enabled() {
		return
	}
	_ = a.rdb.Del(ctx, a.key(showtimeID)).Err()
}
