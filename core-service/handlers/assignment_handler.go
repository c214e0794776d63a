package handlers

import (
	"net/http"

	"agencyops-backend/shared/authz"
	"agencyops-backend/shared/database"
	"agencyops-backend/shared/database/models"
	"agencyops-backend/shared/database/tenant"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignRoleRequest represents request body for granting a role
type AssignRoleRequest struct {
	RoleID uuid.UUID `json:"role_id" binding:"required"`
}

// AssignmentResponse represents a role assignment for API responses
type AssignmentResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	RoleID      uuid.UUID `json:"role_id"`
	RoleName    string    `json:"role_name"`
	RoleLevel   int       `json:"role_level"`
	GrantedByID uuid.UUID `json:"granted_by_id"`
	CreatedAt   string    `json:"created_at"`
}

// GetUserRoles lists the roles assigned to a user
// @Summary Get a user's role assignments
// @Description List every role the user currently holds in the calling organization
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid user ID format"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id}/roles [get]
func GetUserRoles(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	userUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user ID format",
			"message": err.Error(),
		})
		return
	}

	store, err := tenant.ForOrg(database.DB, actor.User.OrganizationID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to scope query",
			"message": err.Error(),
		})
		return
	}

	var user models.User
	if err := store.First(&user, "id = ?", userUUID); err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "User not found",
				"message": "User with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve user",
			"message": err.Error(),
		})
		return
	}

	var assignments []models.RoleAssignment
	if err := store.Query(&models.RoleAssignment{}).
		Preload("Role").
		Where("user_id = ?", userUUID).
		Find(&assignments).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve assignments",
			"message": err.Error(),
		})
		return
	}

	items := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		items = append(items, AssignmentResponse{
			ID:          a.ID,
			UserID:      a.UserID,
			RoleID:      a.RoleID,
			RoleName:    a.Role.Name,
			RoleLevel:   a.Role.Level,
			GrantedByID: a.GrantedByID,
			CreatedAt:   a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"items": items},
	})
}

// AssignRole grants a role to a user
// @Summary Grant a role to a user
// @Description Grant a role to a user. The caller must outrank the granted role's level. Grants for one organization are serialized.
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param assignment body AssignRoleRequest true "Role to grant"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created assignment"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 403 {object} map[string]string "Self-escalation attempt"
// @Failure 404 {object} map[string]string "User or role not found"
// @Failure 409 {object} map[string]string "User already holds this role"
// @Failure 500 {object} map[string]string "Server error"
// @Router /users/{id}/roles [post]
func AssignRole(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	userUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user ID format",
			"message": err.Error(),
		})
		return
	}

	var request AssignRoleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	store, err := tenant.ForOrg(database.DB, actor.User.OrganizationID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to scope query",
			"message": err.Error(),
		})
		return
	}

	var assignment models.RoleAssignment

	txErr := store.Transaction(func(tx *tenant.Store) error {
		// Concurrent grants and role edits inside one organization run one
		// at a time, so hierarchy checks always see the committed state.
		if err := tx.LockOrg(); err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userUUID); err != nil {
			return &handlerError{http.StatusNotFound, "User not found", "User with the given ID does not exist"}
		}

		// Role lookup runs inside the same scoped store, so a role id from
		// another organization is simply not found.
		var role models.Role
		if err := tx.First(&role, "id = ?", request.RoleID); err != nil {
			return &handlerError{http.StatusNotFound, "Role not found", "Role with the given ID does not exist"}
		}

		if err := authz.CheckRoleEdit(actor.Level, role.Grant()); err != nil {
			return &handlerError{http.StatusForbidden, string(authz.ReasonSelfEscalation), "Caller cannot grant a role at or above its own level"}
		}

		var existing models.RoleAssignment
		if err := tx.Query(&models.RoleAssignment{}).
			Where("user_id = ? AND role_id = ?", userUUID, request.RoleID).
			First(&existing).Error; err == nil {
			return &handlerError{http.StatusConflict, "Duplicate assignment", "User already holds this role"}
		}

		assignment = models.RoleAssignment{
			UserID:      userUUID,
			RoleID:      request.RoleID,
			GrantedByID: actor.User.ID,
		}
		if err := tx.Create(&assignment); err != nil {
			return err
		}

		assignment.Role = role
		return nil
	})
	if txErr != nil {
		writeHandlerError(ctx, txErr)
		return
	}

	invalidateUserCache(actor.User.OrganizationID, userUUID)

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Role granted successfully",
		"data": AssignmentResponse{
			ID:          assignment.ID,
			UserID:      assignment.UserID,
			RoleID:      assignment.RoleID,
			RoleName:    assignment.Role.Name,
			RoleLevel:   assignment.Role.Level,
			GrantedByID: assignment.GrantedByID,
			CreatedAt:   assignment.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
	})
}

// RevokeRole revokes a role from a user
// @Summary Revoke a role from a user
// @Description Remove a role assignment. The caller must outrank the revoked role's level.
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param role_id path string true "Role ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]string "Success message"
// @Failure 400 {object} map[string]string "Invalid ID format"
// @Failure 403 {object} map[string]string "Self-escalation attempt"
// @Failure 404 {object} map[string]string "Assignment not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /users/{id}/roles/{role_id} [delete]
func RevokeRole(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	userUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user ID format",
			"message": err.Error(),
		})
		return
	}

	roleUUID, err := uuid.Parse(ctx.Param("role_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid role ID format",
			"message": err.Error(),
		})
		return
	}

	store, err := tenant.ForOrg(database.DB, actor.User.OrganizationID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to scope query",
			"message": err.Error(),
		})
		return
	}

	txErr := store.Transaction(func(tx *tenant.Store) error {
		if err := tx.LockOrg(); err != nil {
			return err
		}

		var role models.Role
		if err := tx.First(&role, "id = ?", roleUUID); err != nil {
			return &handlerError{http.StatusNotFound, "Role not found", "Role with the given ID does not exist"}
		}

		if err := authz.CheckRoleEdit(actor.Level, role.Grant()); err != nil {
			return &handlerError{http.StatusForbidden, string(authz.ReasonSelfEscalation), "Caller cannot revoke a role at or above its own level"}
		}

		var assignment models.RoleAssignment
		if err := tx.Query(&models.RoleAssignment{}).
			Where("user_id = ? AND role_id = ?", userUUID, roleUUID).
			First(&assignment).Error; err != nil {
			return &handlerError{http.StatusNotFound, "Assignment not found", "User does not hold this role"}
		}

		return tx.Delete(&assignment, assignment.ID)
	})
	if txErr != nil {
		writeHandlerError(ctx, txErr)
		return
	}

	invalidateUserCache(actor.User.OrganizationID, userUUID)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Role revoked successfully",
	})
}

// handlerError carries an HTTP status out of a transaction closure.
type handlerError struct {
	Status int
	Title  string
	Detail string
}

func (e *handlerError) Error() string { return e.Detail }

func writeHandlerError(ctx *gin.Context, err error) {
	if he, ok := err.(*handlerError); ok {
		ctx.JSON(he.Status, gin.H{
			"error":   he.Title,
			"message": he.Detail,
		})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Transaction failed",
		"message": err.Error(),
	})
}
