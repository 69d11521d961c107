package utilities

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// limiterIdleTTL is how long an unseen client keeps its bucket.
	limiterIdleTTL = 10 * time.Minute
	// limiterSweepThreshold is the tracked-client count past which a
	// new entry triggers an idle sweep.
	limiterSweepThreshold = 1024
)

// clientLimiters tracks one token bucket per client. Idle entries are
// evicted once the map grows past the sweep threshold, so it stays
// bounded by the number of recently active clients.
type clientLimiters struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clients map[string]*clientEntry
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	return &clientLimiters{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*clientEntry),
	}
}

func (cl *clientLimiters) get(key string, now time.Time) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if entry, ok := cl.clients[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	if len(cl.clients) >= limiterSweepThreshold {
		for k, entry := range cl.clients {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(cl.clients, k)
			}
		}
	}

	entry := &clientEntry{limiter: rate.NewLimiter(cl.rps, cl.burst), lastSeen: now}
	cl.clients[key] = entry
	return entry.limiter
}

// RateLimitMiddleware applies a per-client token bucket to the write
// endpoints (exam submission, assignment submission). Clients are
// keyed by authenticated user when available, else by remote address.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiters := newClientLimiters(rps, burst)

	return func(c *gin.Context) {
		key := c.ClientIP()
		if username, ok := c.Get("username"); ok {
			if s, ok := username.(string); ok && s != "" {
				key = s
			}
		}

		if !limiters.get(key, time.Now()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
