package handlers

import (
	"log"
	"net/http"

	"agencyops-backend/shared/authz"
	"agencyops-backend/shared/database"
	"agencyops-backend/shared/database/models"
	"agencyops-backend/shared/database/tenant"
	"agencyops-backend/shared/utils/cache"
	"agencyops-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoleResponse represents role data for API responses
type RoleResponse struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Level          int          `json:"level"`
	Scope          authz.Scope  `json:"scope"`
	Matrix         authz.Matrix `json:"matrix"`
	IsDefault      bool         `json:"is_default"`
	OrganizationID uuid.UUID    `json:"organization_id"`
	CreatedAt      string       `json:"created_at"`
	UpdatedAt      string       `json:"updated_at"`
}

// CreateRoleRequest represents request body for creating a role
type CreateRoleRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Level       int                 `json:"level" binding:"min=0,max=5"`
	Scope       string              `json:"scope" binding:"required"`
	Matrix      map[string][]string `json:"matrix" binding:"required"`
}

// UpdateRoleRequest represents request body for updating a role
type UpdateRoleRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Level       *int                `json:"level" binding:"omitempty"`
	Scope       string              `json:"scope"`
	Matrix      map[string][]string `json:"matrix"`
}

func toRoleResponse(role models.Role) RoleResponse {
	return RoleResponse{
		ID:             role.ID,
		Name:           role.Name,
		Description:    role.Description,
		Level:          role.Level,
		Scope:          role.Scope,
		Matrix:         role.Matrix.Data(),
		IsDefault:      role.IsDefault,
		OrganizationID: role.OrganizationID,
		CreatedAt:      role.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      role.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetRoles retrieves the calling organization's roles
// @Summary Get all roles
// @Description Get the calling organization's roles with pagination, filtering, sorting and search
// @Tags roles
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name and description"
// @Param filters[level] query int false "Filter by role level (0-5)"
// @Param filters[scope] query string false "Filter by scope"
// @Param sort[field] query string false "Sort field (name, level, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /roles [get]
func GetRoles(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
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

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"level": "level",
		"scope": "scope",
	}

	allowedSortFields := map[string]string{
		"name":       "name",
		"level":      "level",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}

	searchFields := []string{"name", "description"}

	baseQuery := store.Query(&models.Role{})
	filteredQuery := query.ApplyFilters(baseQuery, params.Filters, allowedFilters)
	searchedQuery := query.ApplySearch(filteredQuery, params.Search, searchFields)

	var total int64
	searchedQuery.Count(&total)

	finalQuery := query.ApplySort(searchedQuery, params.Sort, allowedSortFields)
	finalQuery = query.ApplyPagination(finalQuery, params.Page, params.Limit)

	var roles []models.Role
	if err := finalQuery.Find(&roles).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve roles",
			"message": err.Error(),
		})
		return
	}

	items := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		items = append(items, toRoleResponse(role))
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      items,
			"pagination": pagination,
		},
	})
}

// GetRole retrieves a single role in the calling organization
// @Summary Get role by ID
// @Description Get detailed information about a role, including its permission matrix
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid role ID format"
// @Failure 404 {object} map[string]string "Role not found"
// @Router /roles/{id} [get]
func GetRole(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	roleUUID, err := uuid.Parse(ctx.Param("id"))
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

	var role models.Role
	if err := store.First(&role, "id = ?", roleUUID); err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Role not found",
				"message": "Role with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve role",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toRoleResponse(role),
	})
}

// CreateRole creates a custom role in the calling organization
// @Summary Create a new role
// @Description Create a custom role. The caller must outrank the new role's level.
// @Tags roles
// @Accept json
// @Produce json
// @Param role body CreateRoleRequest true "Role information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created role"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 403 {object} map[string]string "Self-escalation attempt"
// @Failure 409 {object} map[string]string "Role name already exists"
// @Failure 500 {object} map[string]string "Server error"
// @Router /roles [post]
func CreateRole(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var request CreateRoleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	scope, err := authz.ParseScope(request.Scope)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid scope",
			"message": err.Error(),
		})
		return
	}

	matrix, err := parseMatrix(request.Matrix)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid permission matrix",
			"message": err.Error(),
		})
		return
	}

	// Creating a role at or above the caller's own level would let the
	// caller mint privilege for itself.
	if err := authz.CheckRoleEdit(actor.Level, authz.RoleGrant{Level: request.Level}); err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   string(authz.ReasonSelfEscalation),
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

	role := models.Role{
		Name:        request.Name,
		Description: request.Description,
		Level:       request.Level,
		Scope:       scope,
		Matrix:      datatypes.NewJSONType(matrix),
		IsDefault:   false,
	}

	txErr := store.Transaction(func(tx *tenant.Store) error {
		if err := tx.LockOrg(); err != nil {
			return err
		}

		var existing models.Role
		if err := tx.Query(&models.Role{}).Where("name = ?", request.Name).First(&existing).Error; err == nil {
			return &handlerError{http.StatusConflict, "Role name already exists", "A role with this name already exists in the organization"}
		}

		return tx.Create(&role)
	})
	if txErr != nil {
		writeHandlerError(ctx, txErr)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Role created successfully",
		"data":    toRoleResponse(role),
	})
}

// UpdateRole updates a role in the calling organization
// @Summary Update a role
// @Description Update a role's name, level, scope or matrix. The caller must outrank both the current and the new level.
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Param role body UpdateRoleRequest true "Updated role information"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated role"
// @Failure 400 {object} map[string]string "Invalid request data or ID format"
// @Failure 403 {object} map[string]string "Self-escalation attempt"
// @Failure 404 {object} map[string]string "Role not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /roles/{id} [put]
func UpdateRole(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	roleUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid role ID format",
			"message": err.Error(),
		})
		return
	}

	var request UpdateRoleRequest
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

	if request.Level != nil && (*request.Level < authz.LevelMin || *request.Level > authz.LevelOwner) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid role level",
			"message": "Role level must be between 0 and 5",
		})
		return
	}

	updates := map[string]interface{}{}
	if request.Name != "" {
		updates["name"] = request.Name
	}
	if request.Description != "" {
		updates["description"] = request.Description
	}
	if request.Level != nil {
		updates["level"] = *request.Level
	}
	if request.Scope != "" {
		scope, err := authz.ParseScope(request.Scope)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid scope",
				"message": err.Error(),
			})
			return
		}
		updates["scope"] = scope
	}
	if request.Matrix != nil {
		matrix, err := parseMatrix(request.Matrix)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid permission matrix",
				"message": err.Error(),
			})
			return
		}
		updates["matrix"] = datatypes.NewJSONType(matrix)
	}

	var role models.Role
	txErr := store.Transaction(func(tx *tenant.Store) error {
		// The hierarchy check and the write must see the same committed
		// role, so both run under the organization lock.
		if err := tx.LockOrg(); err != nil {
			return err
		}

		if err := tx.First(&role, "id = ?", roleUUID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return &handlerError{http.StatusNotFound, "Role not found", "Role with the given ID does not exist"}
			}
			return err
		}

		newLevel := role.Level
		if request.Level != nil {
			newLevel = *request.Level
		}
		if err := authz.CheckRoleChange(actor.Level, role.Grant(), newLevel); err != nil {
			return &handlerError{http.StatusForbidden, string(authz.ReasonSelfEscalation), err.Error()}
		}

		if len(updates) > 0 {
			if err := tx.Updates(&role, roleUUID, updates); err != nil {
				return err
			}
		}

		return tx.First(&role, "id = ?", roleUUID)
	})
	if txErr != nil {
		writeHandlerError(ctx, txErr)
		return
	}

	// Every holder of this role may now see a different decision.
	invalidateOrgCache(role.OrganizationID)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Role updated successfully",
		"data":    toRoleResponse(role),
	})
}

// DeleteRole deletes a custom role in the calling organization
// @Summary Delete a role
// @Description Delete a custom role. Default catalog roles and roles still assigned to users cannot be deleted.
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]string "Success message"
// @Failure 400 {object} map[string]string "Invalid role ID format"
// @Failure 403 {object} map[string]string "Self-escalation attempt"
// @Failure 404 {object} map[string]string "Role not found"
// @Failure 409 {object} map[string]string "Role is a default role or still assigned"
// @Failure 500 {object} map[string]string "Server error"
// @Router /roles/{id} [delete]
func DeleteRole(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	roleUUID, err := uuid.Parse(ctx.Param("id"))
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

	var role models.Role
	txErr := store.Transaction(func(tx *tenant.Store) error {
		// Deleting races against concurrent grants of the same role, so the
		// assignment count check holds the organization lock too.
		if err := tx.LockOrg(); err != nil {
			return err
		}

		if err := tx.First(&role, "id = ?", roleUUID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return &handlerError{http.StatusNotFound, "Role not found", "Role with the given ID does not exist"}
			}
			return err
		}

		if err := authz.CheckRoleEdit(actor.Level, role.Grant()); err != nil {
			return &handlerError{http.StatusForbidden, string(authz.ReasonSelfEscalation), err.Error()}
		}

		if role.IsDefault {
			return &handlerError{http.StatusConflict, "Cannot delete default role", "Default catalog roles cannot be deleted"}
		}

		var assigned int64
		if err := tx.Query(&models.RoleAssignment{}).Where("role_id = ?", roleUUID).Count(&assigned).Error; err != nil {
			return err
		}
		if assigned > 0 {
			return &handlerError{http.StatusConflict, "Role is still assigned", "Revoke the role from all users before deleting it"}
		}

		return tx.Delete(&role, roleUUID)
	})
	if txErr != nil {
		writeHandlerError(ctx, txErr)
		return
	}

	invalidateOrgCache(role.OrganizationID)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Role deleted successfully",
	})
}

// invalidateOrgCache drops every cached decision for the organization.
func invalidateOrgCache(orgID uuid.UUID) {
	cacheManager := cache.GetCacheManager()
	if cacheManager == nil {
		return
	}
	if err := cacheManager.InvalidateOrgDecisions(orgID.String()); err != nil {
		log.Printf("⚠️  Failed to invalidate decision cache for organization %s: %v", orgID, err)
	}
}
