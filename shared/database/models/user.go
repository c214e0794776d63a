package models

import (
	"time"

	"github.com/google/uuid"
)

// User belongs to exactly one organization. Roles are held through
// RoleAssignment records, never a single enum field; deactivation flips
// Status to INACTIVE instead of deleting the row so history stays intact.
type User struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	Password       string     `json:"-" gorm:"not null"`
	FirstName      string     `json:"first_name" gorm:"size:100"`
	LastName       string     `json:"last_name" gorm:"size:100"`
	Status         string     `json:"status" gorm:"default:'ACTIVE'"`
	// Department is the user's declared business function (FINANCE, HR,
	// SALES), consumed by department-scoped roles. Empty for most users.
	Department     string     `json:"department" gorm:"size:50"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	// LinkedClientID is set for client-portal users: the client account
	// this user represents, consumed by the own_projects scope.
	LinkedClientID *uuid.UUID `json:"linked_client_id" gorm:"type:uuid"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization Organization     `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Assignments  []RoleAssignment `json:"assignments,omitempty" gorm:"foreignKey:UserID"`
}

// Active reports whether the user may act at all.
func (u *User) Active() bool {
	return u.Status == "ACTIVE"
}

func (u *User) OwnerOrg() uuid.UUID   { return u.OrganizationID }
func (u *User) StampOrg(id uuid.UUID) { u.OrganizationID = id }
