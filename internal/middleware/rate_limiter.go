package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/rmitchellscott/halftone/internal/logging"
)

// RateLimiter hands every client IP its own token bucket
type RateLimiter struct {
	limiters sync.Map // client IP -> *clientLimiter
	limit    rate.Limit
	burst    int
	perMin   int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// NewRateLimiter allows perMinute requests per IP with the given burst.
// perMinute <= 0 disables limiting.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:  rate.Every(time.Minute / time.Duration(max(perMinute, 1))),
		burst:  burst,
		perMin: perMinute,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	for {
		val, ok := rl.limiters.Load(ip)
		if !ok {
			val, _ = rl.limiters.LoadOrStore(ip, &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)})
		}
		cl := val.(*clientLimiter)
		cl.lastSeen.Store(time.Now().UnixNano())

		// Cleanup may have dropped the entry before lastSeen was refreshed
		if cur, ok := rl.limiters.Load(ip); ok && cur == val {
			return cl.limiter
		}
	}
}

// Allow reports whether a request from ip may proceed now
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.perMin <= 0 {
		return true
	}
	return rl.getLimiter(ip).Allow()
}

// RateLimit is a middleware that rejects clients over their budget with 429
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			logging.WarnWithComponent(logging.ComponentAPI, "rate limit exceeded", "ip", ip, "path", c.FullPath())
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded",
				"rate_limit": fmt.Sprintf("%d/min", rl.perMin),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Cleanup removes limiters idle for longer than maxIdle
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle).UnixNano()
	removed := 0
	rl.limiters.Range(func(key, val any) bool {
		cl := val.(*clientLimiter)
		if cl.lastSeen.Load() >= cutoff {
			return true
		}
		// getLimiter may have refreshed or replaced the entry since Range saw it
		if cl.lastSeen.Load() < cutoff && rl.limiters.CompareAndDelete(key, val) {
			removed++
		}
		return true
	})
	return removed
}

// RequestSizeLimit rejects bodies larger than maxBytes. Declared lengths are
// checked up front; chunked bodies are capped while they are read.
func RequestSizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			logging.WarnWithComponent(logging.ComponentAPI, "request too large", "size", c.Request.ContentLength, "limit", maxBytes, "ip", c.ClientIP())
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":    "Request payload too large",
				"max_size": fmt.Sprintf("%dB", maxBytes),
			})
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
