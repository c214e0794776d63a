package handlers

import (
	"log"
	"net/http"

	"agencyops-backend/shared/authz"
	"agencyops-backend/shared/database"
	"agencyops-backend/shared/database/models"
	"agencyops-backend/shared/database/tenant"
	auth "agencyops-backend/shared/utils/auth"
	"agencyops-backend/shared/utils/cache"
	"agencyops-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserResponse represents user data for API responses
type UserResponse struct {
	ID             uuid.UUID          `json:"id"`
	Email          string             `json:"email"`
	FirstName      string             `json:"first_name"`
	LastName       string             `json:"last_name"`
	Status         string             `json:"status"`
	Department     string             `json:"department,omitempty"`
	OrganizationID uuid.UUID          `json:"organization_id"`
	LinkedClientID *uuid.UUID         `json:"linked_client_id,omitempty"`
	Roles          []AssignedRoleInfo `json:"roles"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
}

// AssignedRoleInfo is the role summary embedded in user responses
type AssignedRoleInfo struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Level int         `json:"level"`
	Scope authz.Scope `json:"scope"`
}

// CreateUserRequest represents request body for creating a user
type CreateUserRequest struct {
	Email          string     `json:"email" binding:"required,email"`
	Password       string     `json:"password" binding:"required,min=6"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Department     string     `json:"department"`
	LinkedClientID *uuid.UUID `json:"linked_client_id"`
}

// UpdateUserRequest represents request body for updating a user
type UpdateUserRequest struct {
	Email          string     `json:"email" binding:"omitempty,email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Department     string     `json:"department"`
	LinkedClientID *uuid.UUID `json:"linked_client_id"`
}

func toUserResponse(user models.User) UserResponse {
	roles := make([]AssignedRoleInfo, 0, len(user.Assignments))
	for _, a := range user.Assignments {
		roles = append(roles, AssignedRoleInfo{
			ID:    a.Role.ID,
			Name:  a.Role.Name,
			Level: a.Role.Level,
			Scope: a.Role.Scope,
		})
	}
	return UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Status:         user.Status,
		Department:     user.Department,
		OrganizationID: user.OrganizationID,
		LinkedClientID: user.LinkedClientID,
		Roles:          roles,
		CreatedAt:      user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      user.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetUsers retrieves the calling organization's users
// @Summary Get all users
// @Description Get the calling organization's users with pagination, filtering, sorting and search
// @Tags users
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name and email"
// @Param filters[status] query string false "Filter by status (ACTIVE, INACTIVE)"
// @Param filters[department] query string false "Filter by department (FINANCE, HR, SALES)"
// @Param sort[field] query string false "Sort field (email, first_name, last_name, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /users [get]
func GetUsers(ctx *gin.Context) {
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
		"status":     "status",
		"department": "department",
	}

	allowedSortFields := map[string]string{
		"email":      "email",
		"first_name": "first_name",
		"last_name":  "last_name",
		"status":     "status",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}

	searchFields := []string{"first_name", "last_name", "email"}

	baseQuery := store.Query(&models.User{}).Preload("Assignments.Role")
	filteredQuery := query.ApplyFilters(baseQuery, params.Filters, allowedFilters)
	searchedQuery := query.ApplySearch(filteredQuery, params.Search, searchFields)

	var total int64
	searchedQuery.Count(&total)

	finalQuery := query.ApplySort(searchedQuery, params.Sort, allowedSortFields)
	finalQuery = query.ApplyPagination(finalQuery, params.Page, params.Limit)

	var users []models.User
	if err := finalQuery.Find(&users).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve users",
			"message": err.Error(),
		})
		return
	}

	items := make([]UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, toUserResponse(user))
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

// GetUser retrieves a single user in the calling organization
// @Summary Get user by ID
// @Description Get detailed information about a user in the calling organization
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid user ID format"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id} [get]
func GetUser(ctx *gin.Context) {
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
	if err := store.Query(&models.User{}).
		Preload("Assignments.Role").
		First(&user, "id = ?", userUUID).Error; err != nil {
		// Cross-organization IDs fall out of the scoped query and surface
		// as not-found, indistinguishable from a missing row.
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

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toUserResponse(user),
	})
}

// CreateUser creates a new user in the calling organization
// @Summary Create a new user
// @Description Create a user inside the calling organization. The user starts with no roles.
// @Tags users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created user"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 409 {object} map[string]string "Email already exists"
// @Failure 500 {object} map[string]string "Server error"
// @Router /users [post]
func CreateUser(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var request CreateUserRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var existing models.User
	if err := db.Where("email = ?", request.Email).First(&existing).Error; err == nil {
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Email already exists",
			"message": "A user with this email already exists",
		})
		return
	}

	hashedPassword, err := auth.HashPassword(request.Password)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to hash password",
			"message": err.Error(),
		})
		return
	}

	store, err := tenant.ForOrg(db, actor.User.OrganizationID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to scope query",
			"message": err.Error(),
		})
		return
	}

	user := models.User{
		Email:          request.Email,
		Password:       hashedPassword,
		FirstName:      request.FirstName,
		LastName:       request.LastName,
		Status:         "ACTIVE",
		Department:     request.Department,
		LinkedClientID: request.LinkedClientID,
	}

	if err := store.Create(&user); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create user",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"data":    toUserResponse(user),
	})
}

// UpdateUser updates a user in the calling organization
// @Summary Update a user
// @Description Update a user's profile fields. Requires the caller to outrank the target user.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param user body UpdateUserRequest true "Updated user information"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated user"
// @Failure 400 {object} map[string]string "Invalid request data or ID format"
// @Failure 403 {object} map[string]string "Caller does not outrank the target"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /users/{id} [put]
func UpdateUser(ctx *gin.Context) {
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

	var request UpdateUserRequest
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

	// Editing another user is a management action gated by role level.
	// Users may always edit their own profile.
	if user.ID != actor.User.ID {
		if !authz.CanManage(actor.Level, targetLevel(user.ID, user.OrganizationID)) {
			ctx.JSON(http.StatusForbidden, gin.H{
				"error":   string(authz.ReasonSelfEscalation),
				"message": "Caller does not outrank the target user",
			})
			return
		}
	}

	if request.Email != "" && request.Email != user.Email {
		var existing models.User
		if err := database.DB.Where("email = ? AND id != ?", request.Email, userUUID).First(&existing).Error; err == nil {
			ctx.JSON(http.StatusConflict, gin.H{
				"error":   "Email already exists",
				"message": "Another user with this email already exists",
			})
			return
		}
	}

	updates := map[string]interface{}{}
	if request.Email != "" {
		updates["email"] = request.Email
	}
	if request.FirstName != "" {
		updates["first_name"] = request.FirstName
	}
	if request.LastName != "" {
		updates["last_name"] = request.LastName
	}
	if request.Department != "" {
		updates["department"] = request.Department
	}
	if request.LinkedClientID != nil {
		updates["linked_client_id"] = request.LinkedClientID
	}

	if len(updates) > 0 {
		if err := store.Updates(&user, userUUID, updates); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to update user",
				"message": err.Error(),
			})
			return
		}
	}

	store.Query(&models.User{}).Preload("Assignments.Role").First(&user, "id = ?", userUUID)

	invalidateUserCache(user.OrganizationID, user.ID)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"data":    toUserResponse(user),
	})
}

// DeactivateUser deactivates a user in the calling organization
// @Summary Deactivate a user
// @Description Deactivate a user by setting status to INACTIVE. Requires the caller to outrank the target user.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]string "Success message"
// @Failure 400 {object} map[string]string "Invalid user ID format"
// @Failure 403 {object} map[string]string "Caller does not outrank the target"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /users/{id} [delete]
func DeactivateUser(ctx *gin.Context) {
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

	if !authz.CanManage(actor.Level, targetLevel(user.ID, user.OrganizationID)) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   string(authz.ReasonSelfEscalation),
			"message": "Caller does not outrank the target user",
		})
		return
	}

	if err := store.Updates(&user, userUUID, map[string]interface{}{"status": "INACTIVE"}); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to deactivate user",
			"message": err.Error(),
		})
		return
	}

	invalidateUserCache(user.OrganizationID, user.ID)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deactivated successfully",
	})
}

// invalidateUserCache drops the user's cached authorization decisions.
// Cache trouble is logged, never surfaced; decisions fall back to the
// database on the next check.
func invalidateUserCache(orgID, userID uuid.UUID) {
	cacheManager := cache.GetCacheManager()
	if cacheManager == nil {
		return
	}
	if err := cacheManager.InvalidateUserDecisions(orgID.String(), userID.String()); err != nil {
		log.Printf("⚠️  Failed to invalidate decision cache for user %s: %v", userID, err)
	}
}
