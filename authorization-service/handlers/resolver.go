package handlers

import (
	"fmt"

	"agencyops-backend/shared/authz"
	"agencyops-backend/shared/database/models"
	"agencyops-backend/shared/database/models/workspace"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// departmentKinds maps a declared business function to the resource kinds
// its department scope exposes.
var departmentKinds = map[string][]authz.ResourceKind{
	"FINANCE": {authz.KindFinances, authz.KindReports},
	"HR":      {authz.KindUsers, authz.KindTeams, authz.KindReports},
	"SALES":   {authz.KindClients, authz.KindProjects, authz.KindReports},
}

// loadGrants loads the roles a user currently holds. Assignments are
// constrained to the user's own organization, so a stray cross-org
// assignment row can never contribute a grant.
func loadGrants(db *gorm.DB, user *models.User) ([]authz.RoleGrant, error) {
	var assignments []models.RoleAssignment
	err := db.Preload("Role").
		Where("user_id = ? AND organization_id = ?", user.ID, user.OrganizationID).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role assignments: %w", err)
	}

	grants := make([]authz.RoleGrant, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.Role.OrganizationID != user.OrganizationID {
			continue
		}
		grants = append(grants, assignment.Role.Grant())
	}
	return grants, nil
}

// loadActor resolves the ownership signals scope predicates need: team
// membership, project membership, owned clients and the client link. All
// lookups are bounded to the user's organization.
func loadActor(db *gorm.DB, user *models.User) (authz.Actor, error) {
	actor := authz.Actor{
		UserID:          user.ID,
		OrganizationID:  user.OrganizationID,
		LinkedClientID:  user.LinkedClientID,
		DepartmentKinds: departmentKinds[user.Department],
	}

	// Teams the user belongs to or leads.
	var teamIDs []uuid.UUID
	err := db.Model(&workspace.TeamMember{}).
		Where("user_id = ? AND organization_id = ?", user.ID, user.OrganizationID).
		Pluck("team_id", &teamIDs).Error
	if err != nil {
		return actor, fmt.Errorf("failed to load team memberships: %w", err)
	}
	var ledTeamIDs []uuid.UUID
	err = db.Model(&workspace.Team{}).
		Where("lead_id = ? AND organization_id = ?", user.ID, user.OrganizationID).
		Pluck("id", &ledTeamIDs).Error
	if err != nil {
		return actor, fmt.Errorf("failed to load led teams: %w", err)
	}
	actor.TeamIDs = mergeIDs(teamIDs, ledTeamIDs)

	// Projects the user is a member of, created, or owns tasks within.
	var memberProjectIDs []uuid.UUID
	err = db.Model(&workspace.ProjectMember{}).
		Where("user_id = ? AND organization_id = ?", user.ID, user.OrganizationID).
		Pluck("project_id", &memberProjectIDs).Error
	if err != nil {
		return actor, fmt.Errorf("failed to load project memberships: %w", err)
	}
	var createdProjectIDs []uuid.UUID
	err = db.Model(&workspace.Project{}).
		Where("created_by_id = ? AND organization_id = ?", user.ID, user.OrganizationID).
		Pluck("id", &createdProjectIDs).Error
	if err != nil {
		return actor, fmt.Errorf("failed to load created projects: %w", err)
	}
	var taskProjectIDs []uuid.UUID
	err = db.Model(&workspace.Task{}).
		Where("created_by_id = ? AND organization_id = ? AND project_id IS NOT NULL", user.ID, user.OrganizationID).
		Distinct().
		Pluck("project_id", &taskProjectIDs).Error
	if err != nil {
		return actor, fmt.Errorf("failed to load task projects: %w", err)
	}
	actor.MemberProjectIDs = mergeIDs(memberProjectIDs, createdProjectIDs, taskProjectIDs)

	// Clients the user account-owns.
	var clientIDs []uuid.UUID
	err = db.Model(&workspace.Client{}).
		Where("created_by_id = ? AND organization_id = ?", user.ID, user.OrganizationID).
		Pluck("id", &clientIDs).Error
	if err != nil {
		return actor, fmt.Errorf("failed to load owned clients: %w", err)
	}
	actor.OwnedClientIDs = clientIDs

	return actor, nil
}

func mergeIDs(lists ...[]uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, list := range lists {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
