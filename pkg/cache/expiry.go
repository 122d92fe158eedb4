package cache

import (
	"time"
)

// TTLPolicy decides at read time whether an entry is still fresh.
type TTLPolicy struct {
	TTL time.Duration
}

// Fresh reports whether e is younger than the TTL at now.
func (p TTLPolicy) Fresh(e *Entry, now time.Time) bool {
	return e.Age(now) < p.TTL
}
