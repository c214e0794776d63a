package cache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *CacheManager {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	cm := NewCacheManager(client)
	t.Cleanup(func() { cm.Close() })
	return cm
}

func TestDecisionCacheRoundTrip(t *testing.T) {
	cm := newTestManager(t)

	data := &DecisionCacheData{
		Allowed:  true,
		Reason:   "ALLOWED",
		OrgID:    "org-1",
		UserID:   "user-1",
		Resource: "tasks",
		Action:   "read",
	}
	require.NoError(t, cm.SetDecisionCache(data))

	got, found := cm.GetDecisionCache("org-1", "user-1", "tasks", "read")
	require.True(t, found)
	assert.True(t, got.Allowed)
	assert.Equal(t, "ALLOWED", got.Reason)
	assert.False(t, got.CachedAt.IsZero())
}

func TestDecisionCacheMiss(t *testing.T) {
	cm := newTestManager(t)

	_, found := cm.GetDecisionCache("org-1", "user-1", "tasks", "read")
	assert.False(t, found)
}

func TestInvalidateUserDecisions(t *testing.T) {
	cm := newTestManager(t)

	require.NoError(t, cm.SetDecisionCache(&DecisionCacheData{
		OrgID: "org-1", UserID: "user-1", Resource: "tasks", Action: "read", Allowed: true,
	}))
	require.NoError(t, cm.SetDecisionCache(&DecisionCacheData{
		OrgID: "org-1", UserID: "user-2", Resource: "tasks", Action: "read", Allowed: true,
	}))

	require.NoError(t, cm.InvalidateUserDecisions("org-1", "user-1"))

	_, found := cm.GetDecisionCache("org-1", "user-1", "tasks", "read")
	assert.False(t, found, "invalidated user's decisions must be gone")

	_, found = cm.GetDecisionCache("org-1", "user-2", "tasks", "read")
	assert.True(t, found, "other users' decisions stay cached")
}

func TestInvalidateOrgDecisions(t *testing.T) {
	cm := newTestManager(t)

	require.NoError(t, cm.SetDecisionCache(&DecisionCacheData{
		OrgID: "org-1", UserID: "user-1", Resource: "tasks", Action: "read", Allowed: true,
	}))
	require.NoError(t, cm.SetDecisionCache(&DecisionCacheData{
		OrgID: "org-2", UserID: "user-3", Resource: "tasks", Action: "read", Allowed: false,
	}))

	require.NoError(t, cm.InvalidateOrgDecisions("org-1"))

	_, found := cm.GetDecisionCache("org-1", "user-1", "tasks", "read")
	assert.False(t, found)

	// The other organization's cache is untouched.
	_, found = cm.GetDecisionCache("org-2", "user-3", "tasks", "read")
	assert.True(t, found)
}

func TestCacheStatsCountsDecisionKeys(t *testing.T) {
	cm := newTestManager(t)

	require.NoError(t, cm.SetDecisionCache(&DecisionCacheData{
		OrgID: "org-1", UserID: "user-1", Resource: "tasks", Action: "read",
	}))
	require.NoError(t, cm.SetDecisionCache(&DecisionCacheData{
		OrgID: "org-1", UserID: "user-1", Resource: "tasks", Action: "update",
	}))

	stats, err := cm.GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats["total_decision_keys"])
}
