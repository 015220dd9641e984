package signal

import (
	"time"
)

// rateLimiter is a sliding-window limit on inbound events for one connection.
// It is only used from the read pump, so it needs no lock.
type rateLimiter struct {
	history  []time.Time
	limit    int
	interval time.Duration
}

// newRateLimiter returns nil, meaning unlimited, when limit or interval is not positive.
func newRateLimiter(limit int, interval time.Duration) *rateLimiter {
	if limit <= 0 || interval <= 0 {
		return nil
	}
	return &rateLimiter{
		history:  make([]time.Time, 0, limit),
		limit:    limit,
		interval: interval,
	}
}

func (rl *rateLimiter) Allow(now time.Time) bool {
	if rl == nil {
		return true
	}
	windowStart := now.Add(-rl.interval)

	fresh := rl.history[:0]
	for _, t := range rl.history {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	rl.history = fresh

	if len(rl.history) >= rl.limit {
		return false
	}
	rl.history = append(rl.history, now)
	return true
}
