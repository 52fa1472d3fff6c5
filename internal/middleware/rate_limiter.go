package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window in-memory limiter keyed by user and by IP.
// Redemption endpoints sit behind it so a misbehaving scanner cannot hammer
// the balance-locking path.
type RateLimiter struct {
	userLimits map[int64]*windowCount
	ipLimits   map[string]*windowCount
	mu         sync.Mutex

	userMaxRequests int
	ipMaxRequests   int
	window          time.Duration
}

type windowCount struct {
	requests  int
	resetTime time.Time
}

func NewRateLimiter(userMaxRequests, ipMaxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		userLimits:      make(map[int64]*windowCount),
		ipLimits:        make(map[string]*windowCount),
		userMaxRequests: userMaxRequests,
		ipMaxRequests:   ipMaxRequests,
		window:          window,
	}

	go rl.cleanup()
	return rl
}

// AllowUser checks and counts one request for a user.
func (rl *RateLimiter) AllowUser(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	limit, exists := rl.userLimits[userID]
	if !exists || now.After(limit.resetTime) {
		rl.userLimits[userID] = &windowCount{requests: 1, resetTime: now.Add(rl.window)}
		return true
	}
	if limit.requests >= rl.userMaxRequests {
		return false
	}
	limit.requests++
	return true
}

// AllowIP checks and counts one request for a client IP.
func (rl *RateLimiter) AllowIP(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	limit, exists := rl.ipLimits[ip]
	if !exists || now.After(limit.resetTime) {
		rl.ipLimits[ip] = &windowCount{requests: 1, resetTime: now.Add(rl.window)}
		return true
	}
	if limit.requests >= rl.ipMaxRequests {
		return false
	}
	limit.requests++
	return true
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		rl.mu.Lock()
		for id, limit := range rl.userLimits {
			if now.After(limit.resetTime) {
				delete(rl.userLimits, id)
			}
		}
		for ip, limit := range rl.ipLimits {
			if now.After(limit.resetTime) {
				delete(rl.ipLimits, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware enforces the limiter per client IP and, when the gateway
// forwards one, per authenticated user.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.AllowIP(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		if header := c.GetHeader("X-User-ID"); header != "" {
			if userID, err := strconv.ParseInt(header, 10, 64); err == nil {
				if !rl.AllowUser(userID) {
					c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
					return
				}
			}
		}

		c.Next()
	}
}
