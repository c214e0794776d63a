package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleAssignment records that a user holds a role. A user may hold several
// roles at once; the engine merges them permissively. The organization id
// is denormalized onto the join row so the cross-organization invariant
// (user and role must share a tenant) is checkable in a single query.
type RoleAssignment struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_assignments_user_role,unique"`
	RoleID         uuid.UUID `json:"role_id" gorm:"type:uuid;not null;index:idx_assignments_user_role,unique"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	GrantedByID    uuid.UUID `json:"granted_by_id" gorm:"type:uuid"`
	CreatedAt      time.Time `json:"created_at"`

	// Relations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}

func (a *RoleAssignment) OwnerOrg() uuid.UUID   { return a.OrganizationID }
func (a *RoleAssignment) StampOrg(id uuid.UUID) { a.OrganizationID = id }
