package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window per-client limiter for the public
// verification endpoints. State is in-process only; a multi-instance
// deployment limits per instance.
type RateLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	maxKeys int
}

type bucket struct {
	count     int
	windowEnd time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerMinute per
// client key
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		now:     time.Now,
		buckets: make(map[string]*bucket),
		limit:   requestsPerMinute,
		window:  time.Minute,
		maxKeys: 10000,
	}
}

// Allow reports whether the key may proceed in the current window
func (r *RateLimiter) Allow(key string) bool {
	if r.limit <= 0 {
		return true
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if ok && now.After(b.windowEnd) {
		delete(r.buckets, key)
		ok = false
	}
	if !ok {
		if len(r.buckets) >= r.maxKeys {
			r.gc(now)
		}
		if len(r.buckets) >= r.maxKeys {
			return false
		}
		b = &bucket{windowEnd: now.Add(r.window)}
		r.buckets[key] = b
	}

	if b.count >= r.limit {
		return false
	}
	b.count++
	return true
}

func (r *RateLimiter) gc(now time.Time) {
	for key, b := range r.buckets {
		if now.After(b.windowEnd) {
			delete(r.buckets, key)
		}
	}
}

// RateLimit middleware rejects clients over their per-minute budget
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many verification requests, try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
