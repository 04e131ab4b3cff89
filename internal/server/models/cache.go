package models

import "time"

// CacheEntry is a previously computed extraction result keyed by request URL.
type CacheEntry struct {
	URL        string
	Result     []byte
	ComputedAt time.Time
}

// Fresh reports whether the entry is younger than ttl at now.
func (c *CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.ComputedAt) < ttl
}
