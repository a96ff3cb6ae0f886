package session

import "time"

// Backoff is an exponential reconnect delay. A zero Base retries immediately.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the wait before reconnect attempt n, counted from 0 since the
// last connection that became active.
func (b Backoff) Delay(n int) time.Duration {
	if b.Base <= 0 {
		return 0
	}

	wait := b.Base
	for i := 0; i < n; i++ {
		wait *= 2
		if b.Max > 0 && wait >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && wait > b.Max {
		return b.Max
	}
	return wait
}
