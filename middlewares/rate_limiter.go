package middlewares

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/visitor-app/utils"
)

// RateLimiter is a per-IP sliding window limiter.
type RateLimiter struct {
	limit    int
	interval time.Duration
	ips      map[string][]time.Time
	mu       sync.Mutex
}

func NewRateLimiter(limit int, intervalSeconds int) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: time.Duration(intervalSeconds) * time.Second,
		ips:      make(map[string][]time.Time),
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		rl.mu.Lock()
		cutoff := now.Add(-rl.interval)
		valid := rl.ips[ip][:0]
		for _, t := range rl.ips[ip] {
			if t.After(cutoff) {
				valid = append(valid, t)
			}
		}

		if len(valid) >= rl.limit {
			rl.ips[ip] = valid
			rl.mu.Unlock()
			utils.RespondError(c, http.StatusTooManyRequests, errors.New("too many requests, slow down"))
			c.Abort()
			return
		}

		rl.ips[ip] = append(valid, now)
		rl.mu.Unlock()
		c.Next()
	}
}

// NewStrictRateLimiter guards the login/register endpoints with a much
// tighter window.
func NewStrictRateLimiter() gin.HandlerFunc {
	limiter := NewRateLimiter(5, 60)
	return limiter.RateLimit()
}
