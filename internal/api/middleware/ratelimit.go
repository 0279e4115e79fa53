package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/nexconsult/registry-api/internal/config"
)

// RateLimiter applies a token bucket per client IP. Portal workflows
// hold a browser for minutes, so the limits here are what keeps one
// caller from monopolizing Chrome capacity.
type RateLimiter struct {
	config   config.RateLimitConfig
	clients  map[string]*rate.Limiter
	lastSeen map[string]time.Time
	mu       sync.RWMutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		clients:  make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
	}
	go rl.cleanupClients()
	return rl
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getLimiter(c.ClientIP())

		if !limiter.Allow() {
			retryAfter := rl.retryAfter()

			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.config.RequestsPerMinute))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     fmt.Sprintf("Too many requests. Try again in %v", retryAfter),
				"retry_after": retryAfter.Seconds(),
				"timestamp":   time.Now(),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.config.RequestsPerMinute))
		c.Next()
	}
}

// getLimiter gets or creates a rate limiter for a client
func (rl *RateLimiter) getLimiter(clientID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lastSeen[clientID] = time.Now()

	if limiter, exists := rl.clients[clientID]; exists {
		return limiter
	}

	rps := rate.Limit(float64(rl.config.RequestsPerMinute) / 60.0)
	limiter := rate.NewLimiter(rps, rl.config.BurstSize)
	rl.clients[clientID] = limiter
	return limiter
}

// retryAfter estimates when the next token becomes available.
func (rl *RateLimiter) retryAfter() time.Duration {
	tokensPerSecond := float64(rl.config.RequestsPerMinute) / 60.0
	if tokensPerSecond <= 0 {
		return time.Minute
	}
	return time.Duration(float64(time.Second)/tokensPerSecond) + time.Second
}

// cleanupClients removes old client limiters to prevent memory leaks
func (rl *RateLimiter) cleanupClients() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-rl.config.CleanupInterval * 2)
		for clientID, lastSeen := range rl.lastSeen {
			if lastSeen.Before(cutoff) {
				delete(rl.clients, clientID)
				delete(rl.lastSeen, clientID)
			}
		}
		rl.mu.Unlock()
	}
}
