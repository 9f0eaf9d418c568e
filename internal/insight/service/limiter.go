package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// refillWindow is how long an untouched bucket takes to fill back to its burst. An entry idle for
// that long is indistinguishable from a new one, so it is dropped.
const refillWindow = time.Minute

type userBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserLimiter holds one token bucket per user. Idle buckets are swept at most once per
// refillWindow.
type UserLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*userBucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewUserLimiter allows perMinute events per user per minute, with a burst of perMinute.
// perMinute <= 0 returns nil, which allows everything.
func NewUserLimiter(perMinute int) *UserLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &UserLimiter{
		buckets: make(map[string]*userBucket),
		limit:   rate.Every(refillWindow / time.Duration(perMinute)),
		burst:   perMinute,
		now:     time.Now,
	}
}

// Allow reports whether userID may generate now and consumes a token if so.
func (l *UserLimiter) Allow(userID string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)
	b, ok := l.buckets[userID]
	if !ok {
		b = &userBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[userID] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Len returns the number of tracked users.
func (l *UserLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *UserLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < refillWindow {
		return
	}
	l.lastSweep = now
	for id, b := range l.buckets {
		if now.Sub(b.lastSeen) >= refillWindow {
			delete(l.buckets, id)
		}
	}
}
