package middleware

import (
	"net/http"
	"sync"
	"time"

	"agencyops-backend/shared/config"

	"github.com/gin-gonic/gin"
)

// clientWindow tracks one client's request count inside the current window.
type clientWindow struct {
	Count      int
	ResetAt    time.Time
	LastAccess time.Time
	Blocked    bool
	BlockUntil time.Time
}

// RateLimiter throttles gateway traffic per client IP. State is in-memory;
// the gateway is a single process in front of the services.
type RateLimiter struct {
	store       map[string]*clientWindow
	mutex       sync.Mutex
	cleanupTime time.Duration
}

// RateLimitConfig holds the window parameters.
type RateLimitConfig struct {
	MaxRequests   int
	TimeWindow    time.Duration
	BlockDuration time.Duration
}

// NewRateLimitConfig reads the window parameters from the environment.
func NewRateLimitConfig() RateLimitConfig {
	cfg := config.GetConfig()

	return RateLimitConfig{
		MaxRequests:   cfg.GetRateLimitMaxRequests(),
		TimeWindow:    time.Duration(cfg.GetRateLimitTimeWindowSeconds()) * time.Second,
		BlockDuration: time.Duration(cfg.GetRateLimitBlockDurationMinutes()) * time.Minute,
	}
}

// NewRateLimiter creates a limiter and starts its background cleanup.
func NewRateLimiter(cleanupTime time.Duration) *RateLimiter {
	limiter := &RateLimiter{
		store:       make(map[string]*clientWindow),
		cleanupTime: cleanupTime,
	}

	go limiter.cleanup()

	return limiter
}

// cleanup drops clients that have been idle for a day.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupTime)
	defer ticker.Stop()

	for range ticker.C {
		rl.mutex.Lock()
		now := time.Now()
		for key, window := range rl.store {
			if now.Sub(window.LastAccess) > 24*time.Hour {
				delete(rl.store, key)
			}
		}
		rl.mutex.Unlock()
	}
}

func (rl *RateLimiter) allow(key string, cfg RateLimitConfig) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	window, exists := rl.store[key]

	if !exists {
		rl.store[key] = &clientWindow{
			Count:      1,
			ResetAt:    now.Add(cfg.TimeWindow),
			LastAccess: now,
		}
		return true
	}

	window.LastAccess = now

	if window.Blocked {
		if now.Before(window.BlockUntil) {
			return false
		}
		window.Blocked = false
		window.Count = 1
		window.ResetAt = now.Add(cfg.TimeWindow)
		return true
	}

	if now.After(window.ResetAt) {
		window.Count = 1
		window.ResetAt = now.Add(cfg.TimeWindow)
		return true
	}

	if window.Count >= cfg.MaxRequests {
		window.Blocked = true
		window.BlockUntil = now.Add(cfg.BlockDuration)
		return false
	}

	window.Count++
	return true
}

// GlobalRateLimitMiddleware throttles every request through the gateway.
func (rl *RateLimiter) GlobalRateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "global:" + c.ClientIP()

		if !rl.allow(key, cfg) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     "Too many requests from this IP. Please try again later.",
				"retry_after": cfg.BlockDuration.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
