// Package ratelimit provides a per-client token bucket limiter for the
// code issuance and login endpoints. It slows abuse of the delivery channel;
// the per-record attempt budget is enforced separately by the stores.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is one client's token bucket. Tokens refill continuously up to the
// burst capacity.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// Limiter tracks a token bucket per key. Keys are typically client IPs.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	burst   float64
	rate    float64 // tokens per second
	ttl     time.Duration
}

// LimiterOption configures a Limiter
type LimiterOption func(*Limiter)

// WithBucketTTL controls how long an idle client's bucket is kept around.
func WithBucketTTL(ttl time.Duration) LimiterOption {
	return func(l *Limiter) {
		l.ttl = ttl
	}
}

// NewLimiter creates a limiter allowing perMinute sustained requests per key
// with bursts up to burst.
func NewLimiter(burst int, perMinute float64, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		burst:   float64(burst),
		rate:    perMinute / 60.0,
		ttl:     time.Hour,
	}

	for _, opt := range opts {
		opt(l)
	}

	go l.sweep()
	return l
}

// Allow reports whether a request for key may proceed, consuming one token
// if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst}
		l.buckets[key] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Reset drops the bucket for key, restoring full burst capacity.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// ActiveBuckets returns the number of tracked keys.
func (l *Limiter) ActiveBuckets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep drops buckets idle longer than the TTL.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.ttl)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		cutoff := time.Now().Add(-l.ttl)
		for key, b := range l.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}
