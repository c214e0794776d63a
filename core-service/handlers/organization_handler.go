package handlers

import (
	"log"
	"net/http"

	"agencyops-backend/shared/database"
	"agencyops-backend/shared/database/models"
	auth "agencyops-backend/shared/utils/auth"
	"agencyops-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationResponse represents organization data for API responses
type OrganizationResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	SubscriptionTier string    `json:"subscription_tier"`
	Status           string    `json:"status"`
	OwnerID          uuid.UUID `json:"owner_id"`
	CreatedAt        string    `json:"created_at"`
	UpdatedAt        string    `json:"updated_at"`
}

// CreateOrganizationRequest represents request body for creating an organization
type CreateOrganizationRequest struct {
	Name             string `json:"name" binding:"required"`
	Slug             string `json:"slug" binding:"required"`
	SubscriptionTier string `json:"subscription_tier"`
	OwnerEmail       string `json:"owner_email" binding:"required,email"`
	OwnerPassword    string `json:"owner_password" binding:"required,min=6"`
	OwnerFirstName   string `json:"owner_first_name"`
	OwnerLastName    string `json:"owner_last_name"`
}

// UpdateOrganizationRequest represents request body for updating an organization
type UpdateOrganizationRequest struct {
	Name             string `json:"name"`
	SubscriptionTier string `json:"subscription_tier"`
	Status           string `json:"status"`
}

func toOrganizationResponse(org models.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:               org.ID,
		Name:             org.Name,
		Slug:             org.Slug,
		SubscriptionTier: org.SubscriptionTier,
		Status:           org.Status,
		OwnerID:          org.OwnerID,
		CreatedAt:        org.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:        org.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetOrganizations lists the organizations visible to the caller
// @Summary Get organizations
// @Description List the organizations the caller belongs to, with pagination, filtering, sorting and search
// @Tags organizations
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name and slug"
// @Param filters[status] query string false "Filter by status (ACTIVE, SUSPENDED)"
// @Param filters[subscription_tier] query string false "Filter by subscription tier"
// @Param sort[field] query string false "Sort field (name, slug, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /organizations [get]
func GetOrganizations(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"status":            "status",
		"subscription_tier": "subscription_tier",
	}

	allowedSortFields := map[string]string{
		"name":       "name",
		"slug":       "slug",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}

	searchFields := []string{"name", "slug"}

	// Organization rows carry no organization_id column of their own, so the
	// tenant filter is the id itself. A caller only ever sees its own tenant.
	baseQuery := db.Model(&models.Organization{}).Where("id = ?", actor.User.OrganizationID)
	filteredQuery := query.ApplyFilters(baseQuery, params.Filters, allowedFilters)
	searchedQuery := query.ApplySearch(filteredQuery, params.Search, searchFields)

	var total int64
	searchedQuery.Count(&total)

	finalQuery := query.ApplySort(searchedQuery, params.Sort, allowedSortFields)
	finalQuery = query.ApplyPagination(finalQuery, params.Page, params.Limit)

	var organizations []models.Organization
	if err := finalQuery.Find(&organizations).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve organizations",
			"message": err.Error(),
		})
		return
	}

	items := make([]OrganizationResponse, 0, len(organizations))
	for _, org := range organizations {
		items = append(items, toOrganizationResponse(org))
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

// organizationMismatch rejects requests targeting a different tenant. The
// response matches a missing organization so foreign ids do not leak
// existence, the same convention the tenant store uses for rows.
func organizationMismatch(ctx *gin.Context, actor *actorContext, orgID uuid.UUID) bool {
	if orgID == actor.User.OrganizationID {
		return false
	}
	ctx.JSON(http.StatusNotFound, gin.H{
		"error":   "Organization not found",
		"message": "Organization with the given ID does not exist",
	})
	return true
}

// GetOrganization retrieves a single organization by ID
// @Summary Get organization by ID
// @Description Get detailed information about a specific organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid organization ID format"
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /organizations/{id} [get]
func GetOrganization(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	orgUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid organization ID format",
			"message": err.Error(),
		})
		return
	}

	if organizationMismatch(ctx, actor, orgUUID) {
		return
	}

	db := database.DB
	var org models.Organization
	if err := db.First(&org, "id = ?", orgUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Organization not found",
				"message": "Organization with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve organization",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toOrganizationResponse(org),
	})
}

// CreateOrganization provisions a new tenant
// @Summary Create a new organization
// @Description Create an organization, seed its default role catalog and create its first OWNER user
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body CreateOrganizationRequest true "Organization information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created organization"
// @Failure 400 {object} map[string]string "Invalid request data"
// @Failure 409 {object} map[string]string "Slug or owner email already exists"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations [post]
func CreateOrganization(ctx *gin.Context) {
	var request CreateOrganizationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var existing models.Organization
	if err := db.Where("slug = ?", request.Slug).First(&existing).Error; err == nil {
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Slug already exists",
			"message": "An organization with this slug already exists",
		})
		return
	}

	var existingUser models.User
	if err := db.Where("email = ?", request.OwnerEmail).First(&existingUser).Error; err == nil {
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Email already exists",
			"message": "A user with the owner email already exists",
		})
		return
	}

	tier := request.SubscriptionTier
	if tier == "" {
		tier = "FREE"
	}

	hashedPassword, err := auth.HashPassword(request.OwnerPassword)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to hash password",
			"message": err.Error(),
		})
		return
	}

	org := models.Organization{
		Name:             request.Name,
		Slug:             request.Slug,
		SubscriptionTier: tier,
		Status:           "ACTIVE",
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		seeded, err := database.SeedRolesForOrganization(tx, org.ID)
		if err != nil {
			return err
		}
		log.Printf("✅ Seeded %d default roles for organization %s", seeded, org.Slug)

		owner := models.User{
			Email:          request.OwnerEmail,
			Password:       hashedPassword,
			FirstName:      request.OwnerFirstName,
			LastName:       request.OwnerLastName,
			Status:         "ACTIVE",
			OrganizationID: org.ID,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		var ownerRole models.Role
		if err := tx.Where("organization_id = ? AND name = ?", org.ID, "OWNER").First(&ownerRole).Error; err != nil {
			return err
		}

		assignment := models.RoleAssignment{
			UserID:         owner.ID,
			RoleID:         ownerRole.ID,
			OrganizationID: org.ID,
			GrantedByID:    owner.ID,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		return tx.Model(&org).Update("owner_id", owner.ID).Error
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create organization",
			"message": err.Error(),
		})
		return
	}

	db.First(&org, "id = ?", org.ID)

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Organization created successfully",
		"data":    toOrganizationResponse(org),
	})
}

// UpdateOrganization updates an existing organization
// @Summary Update an organization
// @Description Update an organization's name, subscription tier or status
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param organization body UpdateOrganizationRequest true "Updated organization information"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated organization"
// @Failure 400 {object} map[string]string "Invalid request data or ID format"
// @Failure 404 {object} map[string]string "Organization not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/{id} [put]
func UpdateOrganization(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	orgUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid organization ID format",
			"message": err.Error(),
		})
		return
	}

	if organizationMismatch(ctx, actor, orgUUID) {
		return
	}

	var request UpdateOrganizationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	db := database.DB
	var org models.Organization
	if err := db.First(&org, "id = ?", orgUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Organization not found",
				"message": "Organization with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve organization",
			"message": err.Error(),
		})
		return
	}

	updates := map[string]interface{}{}
	if request.Name != "" {
		updates["name"] = request.Name
	}
	if request.SubscriptionTier != "" {
		updates["subscription_tier"] = request.SubscriptionTier
	}
	if request.Status != "" {
		updates["status"] = request.Status
	}

	if len(updates) > 0 {
		if err := db.Model(&org).Updates(updates).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to update organization",
				"message": err.Error(),
			})
			return
		}
	}

	db.First(&org, "id = ?", orgUUID)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organization updated successfully",
		"data":    toOrganizationResponse(org),
	})
}

// DeleteOrganization suspends an organization (soft delete)
// @Summary Delete an organization
// @Description Soft delete an organization by setting status to SUSPENDED
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]string "Success message"
// @Failure 400 {object} map[string]string "Invalid organization ID format"
// @Failure 404 {object} map[string]string "Organization not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /organizations/{id} [delete]
func DeleteOrganization(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	orgUUID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid organization ID format",
			"message": err.Error(),
		})
		return
	}

	if organizationMismatch(ctx, actor, orgUUID) {
		return
	}

	db := database.DB
	var org models.Organization
	if err := db.First(&org, "id = ?", orgUUID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Organization not found",
				"message": "Organization with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve organization",
			"message": err.Error(),
		})
		return
	}

	if err := db.Model(&org).Update("status", "SUSPENDED").Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete organization",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Organization suspended successfully",
	})
}
