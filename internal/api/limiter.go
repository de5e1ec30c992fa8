package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client address
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

// newClientLimiter returns nil when perMinute is zero, which disables limiting
func newClientLimiter(perMinute, burst int, idleTTL time.Duration) *clientLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		clients: make(map[string]*clientEntry),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Allow reports whether the client may make another request now
func (l *clientLimiter) Allow(client string) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictIdle(now)

	entry, ok := l.clients[client]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *clientLimiter) evictIdle(now time.Time) {
	if l.idleTTL <= 0 {
		return
	}
	for addr, entry := range l.clients {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.clients, addr)
		}
	}
}

func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
