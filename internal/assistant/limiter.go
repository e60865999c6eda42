package assistant

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per actor.
type Limiter struct {
	mu      sync.Mutex
	perMin  int
	buckets map[int64]*rate.Limiter
}

// NewLimiter allows perMinute calls per actor with bursts of the same size.
// A non-positive value disables limiting.
func NewLimiter(perMinute int) *Limiter {
	return &Limiter{perMin: perMinute, buckets: map[int64]*rate.Limiter{}}
}

func (l *Limiter) Allow(actorID int64) bool {
	if l == nil || l.perMin <= 0 {
		return true
	}
	l.mu.Lock()
	b, ok := l.buckets[actorID]
	if !ok {
		b = rate.NewLimiter(rate.Limit(float64(l.perMin)/60), l.perMin)
		l.buckets[actorID] = b
	}
	l.mu.Unlock()
	return b.Allow()
}
