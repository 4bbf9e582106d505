// internal/common/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter counts requests per client key in fixed one-minute windows.
// A window opens on the first request from a key and allows perMinute
// requests; once it has passed, the next request opens a fresh window.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	burst   int
	window  time.Duration
	idleTTL time.Duration
	now     func() time.Time
}

// client holds a non-refilling bucket for the current window.
type client struct {
	limiter  *rate.Limiter
	reset    time.Time
	lastSeen time.Time
}

// New creates a limiter. idleTTL controls how long an unused bucket is
// kept; zero keeps buckets for ten minutes.
func New(perMinute int, idleTTL time.Duration) *Limiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &Limiter{
		clients: make(map[string]*client),
		burst:   perMinute,
		window:  time.Minute,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Allow counts one request for key and reports whether it fits in the
// key's current window.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &client{}
		l.clients[key] = c
	}
	if !ok || now.After(c.reset) {
		// A zero limit never refills: the bucket only holds the burst.
		c.limiter = rate.NewLimiter(0, l.burst)
		c.reset = now.Add(l.window)
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1)
}

// Sweep drops buckets idle for longer than the idle TTL and returns how
// many were removed.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Run sweeps idle buckets every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
