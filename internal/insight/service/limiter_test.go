package service

import (
	"fmt"
	"testing"
	"time"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }

func TestUserLimiter_EnforcesPerUser(t *testing.T) {
	clock := &stepClock{t: time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)}
	l := NewUserLimiter(2)
	l.now = clock.now

	if !l.Allow("u1") || !l.Allow("u1") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("u1") {
		t.Error("third call within the minute should be limited")
	}
	if !l.Allow("u2") {
		t.Error("other users have their own bucket")
	}
	clock.t = clock.t.Add(30 * time.Second)
	if !l.Allow("u1") {
		t.Error("one token refills every 30s")
	}
}

func TestUserLimiter_EvictsIdleUsers(t *testing.T) {
	clock := &stepClock{t: time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)}
	l := NewUserLimiter(5)
	l.now = clock.now

	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("user-%d", i))
	}
	if got := l.Len(); got != 100 {
		t.Fatalf("tracked = %d, want 100", got)
	}

	clock.t = clock.t.Add(40 * time.Second)
	l.Allow("user-0")
	clock.t = clock.t.Add(30 * time.Second)
	l.Allow("fresh")
	if got := l.Len(); got != 2 {
		t.Errorf("tracked after sweep = %d, want 2 (user-0 and fresh)", got)
	}
}
