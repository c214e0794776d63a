package workspace

import (
	"time"

	"agencyops-backend/shared/authz"

	"github.com/google/uuid"
)

// Team groups users inside an organization; team ownership feeds the team
// scope.
type Team struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string     `json:"name" gorm:"size:200;not null"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	LeadID         *uuid.UUID `json:"lead_id" gorm:"type:uuid"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TeamMember links a user to a team.
type TeamMember struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TeamID         uuid.UUID `json:"team_id" gorm:"type:uuid;not null;index:idx_team_members,unique"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_team_members,unique"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time `json:"created_at"`
}

func (t *Team) OwnerOrg() uuid.UUID   { return t.OrganizationID }
func (t *Team) StampOrg(id uuid.UUID) { t.OrganizationID = id }

func (m *TeamMember) OwnerOrg() uuid.UUID   { return m.OrganizationID }
func (m *TeamMember) StampOrg(id uuid.UUID) { m.OrganizationID = id }

// AuthzRow maps the team onto the engine's row shape.
func (t *Team) AuthzRow() authz.Row {
	return authz.Row{
		ID:             t.ID,
		Kind:           authz.KindTeams,
		OrganizationID: t.OrganizationID,
	}
}
