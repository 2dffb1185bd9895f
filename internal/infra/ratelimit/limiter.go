// Package ratelimit — Task 2.1: per-caller-class admission control.
//
// Fixed-window counters keyed by (class, key). Buckets are created lazily
// on the first request of a window and reset when the window elapses.
// Windows are aligned to the clock (now truncated to the window duration),
// not rolling — a request arriving exactly on the boundary belongs to the
// new window. Rejections carry the exact time until the window resets so
// callers can schedule a retry without polling.
package ratelimit

import (
	"sync"
	"time"
)

// Class is a category of endpoint with its own rate-limit policy.
type Class string

const (
	ClassGeneral    Class = "general"
	ClassAuth       Class = "auth"
	ClassAI         Class = "ai"
	ClassGeneration Class = "generation"
	ClassAdmin      Class = "admin"
)

// Policy defines the window and cap for one class.
type Policy struct {
	Limit  int
	Window time.Duration

	// CountFailuresOnly: Admit checks the bucket without consuming a slot;
	// callers consume via RecordFailure. Used for the auth class, where
	// only failed attempts count against the cap.
	CountFailuresOnly bool

	// KeyByCaller: the bucket key must be the caller id, never the remote
	// IP. Which key each class uses is configuration, not a hardcoded
	// per-endpoint choice.
	KeyByCaller bool
}

// DefaultPolicies returns the production policy set.
func DefaultPolicies() map[Class]Policy {
	return map[Class]Policy{
		ClassGeneral:    {Limit: 100, Window: 15 * time.Minute},
		ClassAuth:       {Limit: 5, Window: 15 * time.Minute, CountFailuresOnly: true},
		ClassAI:         {Limit: 30, Window: time.Minute, KeyByCaller: true},
		ClassGeneration: {Limit: 3, Window: 5 * time.Minute, KeyByCaller: true},
		ClassAdmin:      {Limit: 50, Window: 5 * time.Minute, KeyByCaller: true},
	}
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // Set when rejected; always > 0.
}

type bucketKey struct {
	class Class
	key   string
}

// bucket is exclusively owned and mutated by the Limiter under its mutex.
type bucket struct {
	windowStart time.Time
	count       int
}

// Limiter holds all buckets. Admit-and-increment is atomic under one
// mutex so two concurrent requests cannot both take the last slot.
type Limiter struct {
	mu       sync.Mutex
	policies map[Class]Policy
	buckets  map[bucketKey]*bucket
	now      func() time.Time // injectable for tests
}

// New creates a Limiter with the given policies.
func New(policies map[Class]Policy) *Limiter {
	ps := make(map[Class]Policy, len(policies))
	for c, p := range policies {
		ps[c] = p
	}
	return &Limiter{
		policies: ps,
		buckets:  make(map[bucketKey]*bucket),
		now:      time.Now,
	}
}

// Policy returns the policy for class. The zero Policy means unknown class.
func (l *Limiter) Policy(class Class) Policy {
	return l.policies[class]
}

// Admit checks (and for normal classes, consumes) one slot for (class, key).
// Unknown classes are admitted — missing configuration must not take the
// API down.
func (l *Limiter) Admit(class Class, key string) Decision {
	policy, ok := l.policies[class]
	if !ok {
		return Decision{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, now := l.currentBucket(class, key, policy)
	if b.count >= policy.Limit {
		return Decision{RetryAfter: retryAfter(b.windowStart, policy.Window, now)}
	}
	if !policy.CountFailuresOnly {
		b.count++
	}
	return Decision{Allowed: true, Remaining: policy.Limit - b.count}
}

// RecordFailure consumes one slot for a failure-counted class.
// No-op for classes that count every request.
func (l *Limiter) RecordFailure(class Class, key string) {
	policy, ok := l.policies[class]
	if !ok || !policy.CountFailuresOnly {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, _ := l.currentBucket(class, key, policy)
	b.count++
}

// currentBucket returns the live bucket for (class, key), resetting it if
// the window has elapsed. Caller must hold l.mu.
func (l *Limiter) currentBucket(class Class, key string, policy Policy) (*bucket, time.Time) {
	now := l.now()
	windowStart := now.Truncate(policy.Window)

	bk := bucketKey{class: class, key: key}
	b, ok := l.buckets[bk]
	if !ok || !b.windowStart.Equal(windowStart) {
		b = &bucket{windowStart: windowStart}
		l.buckets[bk] = b
	}
	return b, now
}

// retryAfter returns the time until the window resets, rounded up to a
// whole second so the serialized value is never zero.
func retryAfter(windowStart time.Time, window time.Duration, now time.Time) time.Duration {
	d := windowStart.Add(window).Sub(now)
	if rounded := d.Truncate(time.Second); rounded < d || rounded == 0 {
		d = rounded + time.Second
	}
	return d
}
