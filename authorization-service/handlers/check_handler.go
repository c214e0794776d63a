package handlers

import (
	"log"
	"net/http"

	"agencyops-backend/shared/authz"
	"agencyops-backend/shared/database"
	"agencyops-backend/shared/database/models"
	"agencyops-backend/shared/utils/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccessCheckRequest represents a single access check request
type AccessCheckRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

// AccessCheckResponse represents the response from an access check
type AccessCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// BatchAccessCheckRequest represents batch access check request
type BatchAccessCheckRequest struct {
	UserID string                `json:"user_id" binding:"required"`
	Checks []ResourceActionCheck `json:"checks" binding:"required,min=1"`
}

type ResourceActionCheck struct {
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

// BatchAccessCheckResponse represents batch access check response
type BatchAccessCheckResponse struct {
	Results map[string]bool `json:"results"`
}

// CheckAccess decides whether a user may perform an action on a resource kind
// @Summary Check single access
// @Description Decide whether a user may perform an action on a resource kind
// @Tags authz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param check body AccessCheckRequest true "Access check request"
// @Success 200 {object} AccessCheckResponse "Access decision"
// @Failure 400 {object} map[string]interface{} "Invalid request format"
// @Router /authz/check [post]
func CheckAccess(c *gin.Context) {
	var req AccessCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	kind, err := authz.ParseResourceKind(req.Resource)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource kind"})
		return
	}
	action, err := authz.ParseAction(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	allowed, reason := decideWithCache(userID, kind, action)
	c.JSON(http.StatusOK, AccessCheckResponse{Allowed: allowed, Reason: reason})
}

// BatchCheckAccess decides multiple resource-action pairs at once
// @Summary Check multiple access pairs
// @Description Decide multiple resource-action pairs for a user in a single request
// @Tags authz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param batch body BatchAccessCheckRequest true "Batch access check request"
// @Success 200 {object} BatchAccessCheckResponse "Batch access decisions"
// @Failure 400 {object} map[string]interface{} "Invalid request format"
// @Router /authz/batch-check [post]
func BatchCheckAccess(c *gin.Context) {
	var req BatchAccessCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	results := make(map[string]bool)
	for _, check := range req.Checks {
		key := check.Resource + ":" + check.Action

		kind, err := authz.ParseResourceKind(check.Resource)
		if err != nil {
			results[key] = false
			continue
		}
		action, err := authz.ParseAction(check.Action)
		if err != nil {
			results[key] = false
			continue
		}

		allowed, _ := decideWithCache(userID, kind, action)
		results[key] = allowed
	}

	c.JSON(http.StatusOK, BatchAccessCheckResponse{Results: results})
}

// decideWithCache runs the action-level decision with a Redis cache in
// front of it. Row filtering is never cached, only the allow/deny outcome
// for the (user, resource, action) triple.
func decideWithCache(userID uuid.UUID, kind authz.ResourceKind, action authz.Action) (bool, string) {
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return false, string(authz.ReasonNoRole)
	}
	if !user.Active() {
		return false, string(authz.ReasonNoRole)
	}

	cacheManager := cache.GetCacheManager()
	orgKey := user.OrganizationID.String()
	userKey := user.ID.String()
	if cacheManager != nil {
		if data, found := cacheManager.GetDecisionCache(orgKey, userKey, string(kind), string(action)); found {
			return data.Allowed, data.Reason
		}
	}

	grants, err := loadGrants(db, &user)
	if err != nil {
		return false, string(authz.ReasonNoRole)
	}
	actor, err := loadActor(db, &user)
	if err != nil {
		return false, string(authz.ReasonNoRole)
	}

	decision := authz.Authorize(authz.Request{
		Actor:        actor,
		Roles:        grants,
		ResourceKind: kind,
		Action:       action,
	})

	if cacheManager != nil {
		data := &cache.DecisionCacheData{
			Allowed:  decision.Allowed,
			Reason:   string(decision.Reason),
			OrgID:    orgKey,
			UserID:   userKey,
			Resource: string(kind),
			Action:   string(action),
		}
		// Cache failures never turn into authorization failures.
		if err := cacheManager.SetDecisionCache(data); err != nil {
			log.Printf("⚠️  Failed to cache decision for user %s: %v", userKey, err)
		}
	}

	return decision.Allowed, string(decision.Reason)
}
