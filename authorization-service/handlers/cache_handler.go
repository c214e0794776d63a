package handlers

import (
	"net/http"

	"agencyops-backend/shared/utils/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetCacheStats returns cache statistics
// @Summary Get cache statistics
// @Description Get statistics about the decision cache
// @Tags cache
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Cache statistics"
// @Failure 503 {object} map[string]string "Cache manager not available"
// @Failure 500 {object} map[string]interface{} "Failed to get cache stats"
// @Router /authz/cache/stats [get]
func GetCacheStats(c *gin.Context) {
	cacheManager := cache.GetCacheManager()
	if cacheManager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Cache manager not available",
		})
		return
	}

	stats, err := cacheManager.GetCacheStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get cache stats",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cache_stats": stats,
		"service":     "authorization",
	})
}

// InvalidateUserDecisions invalidates cached decisions for a specific user
// @Summary Invalidate user decision cache
// @Description Invalidate all cached decisions for a specific user in an organization
// @Tags cache
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param org_id path string true "Organization ID"
// @Param user_id path string true "User ID"
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 400 {object} map[string]interface{} "Invalid user ID"
// @Failure 500 {object} map[string]interface{} "Failed to invalidate cache"
// @Failure 503 {object} map[string]string "Cache manager not available"
// @Router /authz/cache/invalidate/org/{org_id}/user/{user_id} [post]
func InvalidateUserDecisions(c *gin.Context) {
	cacheManager := cache.GetCacheManager()
	if cacheManager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Cache manager not available",
		})
		return
	}

	orgID, err := uuid.Parse(c.Param("org_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid organization ID",
			"details": "Organization ID must be a valid UUID",
		})
		return
	}
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user ID",
			"details": "User ID must be a valid UUID",
		})
		return
	}

	if err := cacheManager.InvalidateUserDecisions(orgID.String(), userID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to invalidate user decisions",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User decision cache invalidated successfully",
		"user_id": userID,
	})
}

// InvalidateOrgDecisions invalidates cached decisions for an organization
// @Summary Invalidate organization decision cache
// @Description Invalidate all cached decisions for a specific organization
// @Tags cache
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param org_id path string true "Organization ID"
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 400 {object} map[string]interface{} "Invalid organization ID"
// @Failure 500 {object} map[string]interface{} "Failed to invalidate cache"
// @Failure 503 {object} map[string]string "Cache manager not available"
// @Router /authz/cache/invalidate/org/{org_id} [post]
func InvalidateOrgDecisions(c *gin.Context) {
	cacheManager := cache.GetCacheManager()
	if cacheManager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Cache manager not available",
		})
		return
	}

	orgID, err := uuid.Parse(c.Param("org_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid organization ID",
			"details": "Organization ID must be a valid UUID",
		})
		return
	}

	if err := cacheManager.InvalidateOrgDecisions(orgID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to invalidate organization decisions",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organization decision cache invalidated successfully",
		"org_id":  orgID,
	})
}

// InvalidateAllDecisions invalidates all decision caches
// @Summary Invalidate all decision cache
// @Description Invalidate all cached decisions across the system
// @Tags cache
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Success message"
// @Failure 500 {object} map[string]interface{} "Failed to invalidate cache"
// @Failure 503 {object} map[string]string "Cache manager not available"
// @Router /authz/cache/invalidate/all [post]
func InvalidateAllDecisions(c *gin.Context) {
	cacheManager := cache.GetCacheManager()
	if cacheManager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Cache manager not available",
		})
		return
	}

	if err := cacheManager.InvalidateAllDecisions(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to invalidate all decisions",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All decision caches invalidated successfully",
	})
}
