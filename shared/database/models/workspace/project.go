package workspace

import (
	"time"

	"agencyops-backend/shared/authz"

	"github.com/google/uuid"
)

// Project is a tenant-owned engagement for a client, optionally owned by a
// team. Membership feeds the assigned_projects scope.
type Project struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string     `json:"name" gorm:"size:200;not null"`
	Status         string     `json:"status" gorm:"default:'ACTIVE'"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	ClientID       *uuid.UUID `json:"client_id" gorm:"type:uuid;index"`
	TeamID         *uuid.UUID `json:"team_id" gorm:"type:uuid;index"`
	CreatedByID    *uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ProjectMember links a user to a project for scope resolution.
type ProjectMember struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID      uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index:idx_project_members,unique"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_project_members,unique"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time `json:"created_at"`
}

// OwnerOrg returns the owning organization.
func (p *Project) OwnerOrg() uuid.UUID { return p.OrganizationID }

// StampOrg sets the owning organization; called by the tenant guard only.
func (p *Project) StampOrg(id uuid.UUID) { p.OrganizationID = id }

func (m *ProjectMember) OwnerOrg() uuid.UUID   { return m.OrganizationID }
func (m *ProjectMember) StampOrg(id uuid.UUID) { m.OrganizationID = id }

// AuthzRow maps the project onto the engine's row shape.
func (p *Project) AuthzRow() authz.Row {
	return authz.Row{
		ID:             p.ID,
		Kind:           authz.KindProjects,
		OrganizationID: p.OrganizationID,
		ClientID:       p.ClientID,
		TeamID:         p.TeamID,
		CreatedByID:    p.CreatedByID,
	}
}
