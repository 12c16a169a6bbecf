package config

import "time"

// AvailabilityCacheConfig defines settings for the Redis-backed seat
// availability cache.  When Enabled is false or no Redis client is
// configured, lookups go straight to the database.  TTL bounds staleness
// between writes; confirmations and cancellations invalidate eagerly.
type AvailabilityCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadAvailabilityCacheConfig reads environment variables to build an
// AvailabilityCacheConfig.  Defaults are used when variables are not set.
func LoadAvailabilityCacheConfig() AvailabilityCacheConfig {
	return AvailabilityCacheConfig{
		Enabled: envBool("AVAILABILITY_CACHE_ENABLED", true),
		TTL:     envDur("AVAILABILITY_CACHE_TTL", 10*time.Second),
		Prefix:  envStr("AVAILABILITY_CACHE_PREFIX", "avail"),
	}
}
