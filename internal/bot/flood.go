// Package bot implements the Telegram transport: long-polling updates,
// command routing, roster ingestion, and outcome rendering.
//
// This file implements a lightweight, in-memory, token-bucket flood guard
// with per-chat buckets and opportunistic garbage collection. It protects
// the update loop from a single chat spamming commands; the real usage
// limits are enforced by the selection engine's rate limiter.
package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitor holds a single rate limiter and the last time it was seen.
// Used to opportunistically evict idle buckets.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// FloodGuard implements a per-chat token-bucket limiter.
//
// Buckets are created on demand and stored in an internal map guarded by a
// mutex. Idle buckets are evicted after a TTL via opportunistic cleanup
// during lookups to keep memory usage bounded. Safe for concurrent use.
type FloodGuard struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[int64]*visitor
	ttl      time.Duration
	cleanupN uint64
}

// NewFloodGuard constructs a FloodGuard with the given tokens-per-second and
// burst size. Burst values <= 0 are coerced to 1.
func NewFloodGuard(rps float64, burst int) *FloodGuard {
	if burst <= 0 {
		burst = 1
	}
	return &FloodGuard{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[int64]*visitor),
		ttl:      10 * time.Minute,
	}
}

// Allow reports whether the chat may consume one more update now.
func (g *FloodGuard) Allow(chatID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, ok := g.visitors[chatID]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(g.rps, g.burst)}
		g.visitors[chatID] = v
	}
	v.lastSeen = time.Now()

	// Every 256 lookups, drop buckets idle beyond the TTL.
	g.cleanupN++
	if g.cleanupN%256 == 0 {
		cutoff := time.Now().Add(-g.ttl)
		for id, vv := range g.visitors {
			if vv.lastSeen.Before(cutoff) {
				delete(g.visitors, id)
			}
		}
	}

	return v.limiter.Allow()
}
