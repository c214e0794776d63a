package handlers

import (
	"net/http"

	"agencyops-backend/shared/authz"
	"agencyops-backend/shared/database"
	"agencyops-backend/shared/database/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorContext carries the authenticated caller for a management request.
// The gateway validates the JWT and forwards the identity in X-User-ID;
// grants are loaded fresh on every request so level checks never act on a
// stale role set.
type actorContext struct {
	User   models.User
	Grants []authz.RoleGrant
	Level  int
}

// requireActor resolves the calling user from the gateway headers. It writes
// the error response itself and returns ok=false when the caller cannot act.
func requireActor(ctx *gin.Context) (*actorContext, bool) {
	rawID := ctx.GetHeader("X-User-ID")
	if rawID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Missing user identity",
			"message": "X-User-ID header is required",
		})
		return nil, false
	}

	userID, err := uuid.Parse(rawID)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Invalid user identity",
			"message": err.Error(),
		})
		return nil, false
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unknown user",
			"message": "Calling user does not exist",
		})
		return nil, false
	}

	if !user.Active() {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   "User inactive",
			"message": "Deactivated users cannot perform management actions",
		})
		return nil, false
	}

	grants := loadActorGrants(user.ID, user.OrganizationID)

	return &actorContext{
		User:   user,
		Grants: grants,
		Level:  authz.MaxLevel(grants),
	}, true
}

// loadActorGrants collects the role grants a user holds inside its own
// organization. Assignments pointing at roles from another organization are
// skipped rather than trusted.
func loadActorGrants(userID, orgID uuid.UUID) []authz.RoleGrant {
	db := database.DB

	var assignments []models.RoleAssignment
	db.Preload("Role").
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Find(&assignments)

	grants := make([]authz.RoleGrant, 0, len(assignments))
	for _, a := range assignments {
		if a.Role.OrganizationID != orgID {
			continue
		}
		grants = append(grants, a.Role.Grant())
	}
	return grants
}

// targetLevel computes the highest role level a target user holds. Users
// with no assignments sit below every manager.
func targetLevel(userID, orgID uuid.UUID) int {
	grants := loadActorGrants(userID, orgID)
	if len(grants) == 0 {
		return authz.LevelMin - 1
	}
	return authz.MaxLevel(grants)
}

// parseMatrix validates a wire-format permission matrix against the closed
// resource and action vocabularies. Unknown kinds or actions are rejected
// outright instead of being stored and silently ignored later.
func parseMatrix(raw map[string][]string) (authz.Matrix, error) {
	matrix := authz.Matrix{}
	for rawKind, rawActions := range raw {
		kind, err := authz.ParseResourceKind(rawKind)
		if err != nil {
			return nil, err
		}
		actions := make([]authz.Action, 0, len(rawActions))
		for _, rawAction := range rawActions {
			action, err := authz.ParseAction(rawAction)
			if err != nil {
				return nil, err
			}
			actions = append(actions, action)
		}
		matrix[kind] = actions
	}
	return matrix, nil
}
