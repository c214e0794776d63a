package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests:   3,
		TimeWindow:    time.Minute,
		BlockDuration: time.Hour,
	}
}

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := &RateLimiter{store: make(map[string]*clientWindow)}
	cfg := testConfig()

	for i := 0; i < cfg.MaxRequests; i++ {
		assert.True(t, rl.allow("global:10.0.0.1", cfg), "request %d should pass", i+1)
	}
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := &RateLimiter{store: make(map[string]*clientWindow)}
	cfg := testConfig()

	for i := 0; i < cfg.MaxRequests; i++ {
		require.True(t, rl.allow("global:10.0.0.2", cfg))
	}

	assert.False(t, rl.allow("global:10.0.0.2", cfg))
	// Blocked clients stay blocked for the whole block duration.
	assert.False(t, rl.allow("global:10.0.0.2", cfg))
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := &RateLimiter{store: make(map[string]*clientWindow)}
	cfg := testConfig()

	for i := 0; i < cfg.MaxRequests; i++ {
		require.True(t, rl.allow("global:10.0.0.3", cfg))
	}
	require.False(t, rl.allow("global:10.0.0.3", cfg))

	assert.True(t, rl.allow("global:10.0.0.4", cfg), "another client must not inherit the block")
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := &RateLimiter{store: make(map[string]*clientWindow)}
	cfg := testConfig()

	require.True(t, rl.allow("global:10.0.0.5", cfg))
	rl.store["global:10.0.0.5"].ResetAt = time.Now().Add(-time.Second)
	rl.store["global:10.0.0.5"].Count = cfg.MaxRequests

	assert.True(t, rl.allow("global:10.0.0.5", cfg), "expired window should reset the counter")
}

func TestRateLimiterUnblocksAfterBlockDuration(t *testing.T) {
	rl := &RateLimiter{store: make(map[string]*clientWindow)}
	cfg := testConfig()

	for i := 0; i < cfg.MaxRequests; i++ {
		require.True(t, rl.allow("global:10.0.0.6", cfg))
	}
	require.False(t, rl.allow("global:10.0.0.6", cfg))

	rl.store["global:10.0.0.6"].BlockUntil = time.Now().Add(-time.Second)

	assert.True(t, rl.allow("global:10.0.0.6", cfg))
}
