package models

import (
	"time"

	"agencyops-backend/shared/authz"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Role is a named permission profile scoped to one organization. The
// permission matrix is stored as JSONB; level and scope drive the
// hierarchy and row-visibility rules. Catalog archetypes are marked
// is_default and created at organization bootstrap.
type Role struct {
	ID             uuid.UUID                           `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string                              `json:"name" gorm:"size:100;not null;index:idx_roles_org_name,unique"`
	Description    string                              `json:"description" gorm:"type:text"`
	Level          int                                 `json:"level" gorm:"not null;default:0"`
	Scope          authz.Scope                         `json:"scope" gorm:"size:50;not null"`
	Matrix         datatypes.JSONType[authz.Matrix]    `json:"matrix" gorm:"not null"`
	IsDefault      bool                                `json:"is_default" gorm:"default:false"`
	OrganizationID uuid.UUID                           `json:"organization_id" gorm:"type:uuid;not null;index:idx_roles_org_name,unique"`
	CreatedAt      time.Time                           `json:"created_at"`
	UpdatedAt      time.Time                           `json:"updated_at"`

	// Relations
	Organization Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (r *Role) OwnerOrg() uuid.UUID   { return r.OrganizationID }
func (r *Role) StampOrg(id uuid.UUID) { r.OrganizationID = id }

// Grant flattens the stored role into the engine's view of it.
func (r *Role) Grant() authz.RoleGrant {
	return authz.RoleGrant{
		Name:   r.Name,
		Level:  r.Level,
		Scope:  r.Scope,
		Matrix: r.Matrix.Data(),
	}
}
