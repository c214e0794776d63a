package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"agencyops-backend/shared/config"
)

// CacheManager caches authorization decisions in Redis. Decisions are
// request-scoped facts, so every role or assignment mutation must
// invalidate the affected keys; the serialized mutation path in the core
// service does exactly that before it commits a response to the caller.
type CacheManager struct {
	client *redis.Client
	ctx    context.Context
}

// DecisionCacheData is one cached allow/deny outcome for a
// (user, resource kind, action) triple. Visible rows are never cached:
// they depend on the candidate set of the specific request.
type DecisionCacheData struct {
	Allowed  bool      `json:"allowed"`
	Reason   string    `json:"reason"`
	OrgID    string    `json:"org_id"`
	UserID   string    `json:"user_id"`
	Resource string    `json:"resource"`
	Action   string    `json:"action"`
	CachedAt time.Time `json:"cached_at"`
}

var (
	globalCacheManager *CacheManager
	DecisionTTL        = 15 * time.Minute
)

// InitCacheManager initializes the global cache manager
func InitCacheManager() error {
	cfg := config.GetConfig()

	redisDB, err := strconv.Atoi(cfg.RedisDB)
	if err != nil {
		log.Printf("❌ Invalid Redis DB number: %s, using default 0", cfg.RedisDB)
		redisDB = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       redisDB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	globalCacheManager = &CacheManager{
		client: client,
		ctx:    ctx,
	}

	log.Printf("✅ Redis Cache Manager initialized successfully - %s:%s DB:%d",
		cfg.RedisHost, cfg.RedisPort, redisDB)

	return nil
}

// NewCacheManager wraps an existing Redis client, used by tests.
func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{client: client, ctx: context.Background()}
}

// SetCacheManager replaces the global manager, used by tests.
func SetCacheManager(cm *CacheManager) {
	globalCacheManager = cm
}

// GetCacheManager returns the global cache manager instance
func GetCacheManager() *CacheManager {
	if globalCacheManager == nil {
		if err := InitCacheManager(); err != nil {
			log.Printf("❌ Failed to initialize cache manager: %v", err)
			return nil
		}
	}
	return globalCacheManager
}

// GenerateDecisionKey generates a cache key for one decision. The
// organization is part of the key so org-wide invalidation stays a single
// pattern scan.
func GenerateDecisionKey(orgID, userID, resource, action string) string {
	return fmt.Sprintf("authz:org:%s:user:%s:res:%s:act:%s", orgID, userID, resource, action)
}

// SetDecisionCache caches a decision outcome.
func (cm *CacheManager) SetDecisionCache(data *DecisionCacheData) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	key := GenerateDecisionKey(data.OrgID, data.UserID, data.Resource, data.Action)
	data.CachedAt = time.Now()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %v", err)
	}

	if err := cm.client.Set(cm.ctx, key, jsonData, DecisionTTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %v", err)
	}

	return nil
}

// GetDecisionCache retrieves a cached decision outcome.
func (cm *CacheManager) GetDecisionCache(orgID, userID, resource, action string) (*DecisionCacheData, bool) {
	if cm == nil || cm.client == nil {
		return nil, false
	}

	key := GenerateDecisionKey(orgID, userID, resource, action)

	result, err := cm.client.Get(cm.ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("❌ Cache error: %v", err)
		}
		return nil, false
	}

	var data DecisionCacheData
	if err := json.Unmarshal([]byte(result), &data); err != nil {
		log.Printf("❌ Failed to unmarshal cache data: %v", err)
		return nil, false
	}

	return &data, true
}

// InvalidateUserDecisions invalidates cached decisions for one user,
// called when the user's role assignments change.
func (cm *CacheManager) InvalidateUserDecisions(orgID, userID string) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	pattern := fmt.Sprintf("authz:org:%s:user:%s:*", orgID, userID)
	return cm.invalidateByPattern(pattern)
}

// InvalidateOrgDecisions invalidates every cached decision of one
// organization, called when a role definition changes.
func (cm *CacheManager) InvalidateOrgDecisions(orgID string) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	pattern := fmt.Sprintf("authz:org:%s:*", orgID)
	return cm.invalidateByPattern(pattern)
}

// InvalidateAllDecisions invalidates all cached decisions.
func (cm *CacheManager) InvalidateAllDecisions() error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	return cm.invalidateByPattern("authz:*")
}

// invalidateByPattern invalidates cache entries matching a pattern
func (cm *CacheManager) invalidateByPattern(pattern string) error {
	iter := cm.client.Scan(cm.ctx, 0, pattern, 0).Iterator()
	var keys []string

	for iter.Next(cm.ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %v", err)
	}

	if len(keys) > 0 {
		if err := cm.client.Del(cm.ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete keys: %v", err)
		}
		log.Printf("🗑️  Cache invalidated: %d keys matching pattern '%s'", len(keys), pattern)
	}

	return nil
}

// GetCacheStats returns cache statistics
func (cm *CacheManager) GetCacheStats() (map[string]interface{}, error) {
	if cm == nil || cm.client == nil {
		return nil, fmt.Errorf("cache manager not initialized")
	}

	iter := cm.client.Scan(cm.ctx, 0, "authz:*", 0).Iterator()
	keyCount := 0
	for iter.Next(cm.ctx) {
		keyCount++
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %v", err)
	}

	stats := map[string]interface{}{
		"total_decision_keys":  keyCount,
		"cache_manager_active": true,
	}

	return stats, nil
}

// TestConnection tests the Redis connection
func (cm *CacheManager) TestConnection() error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	testKey := "test:connection"
	testValue := "connection_test_ok"

	if err := cm.client.Set(cm.ctx, testKey, testValue, time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set test value: %v", err)
	}

	result, err := cm.client.Get(cm.ctx, testKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get test value: %v", err)
	}

	if result != testValue {
		return fmt.Errorf("test value mismatch: expected %s, got %s", testValue, result)
	}

	if err := cm.client.Del(cm.ctx, testKey).Err(); err != nil {
		return fmt.Errorf("failed to delete test value: %v", err)
	}

	return nil
}

// Close closes the cache manager connection
func (cm *CacheManager) Close() error {
	if cm != nil && cm.client != nil {
		return cm.client.Close()
	}
	return nil
}
