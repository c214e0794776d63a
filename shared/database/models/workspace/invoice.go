package workspace

import (
	"time"

	"agencyops-backend/shared/authz"

	"github.com/google/uuid"
)

// Invoice is a billing record tied to a client and optionally a project.
// Invoices authorize under the finances resource kind.
type Invoice struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number         string     `json:"number" gorm:"size:50;not null"`
	Status         string     `json:"status" gorm:"default:'DRAFT'"`
	TotalCents     int64      `json:"total_cents" gorm:"not null;default:0"`
	Currency       string     `json:"currency" gorm:"size:3;default:'USD'"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	ClientID       *uuid.UUID `json:"client_id" gorm:"type:uuid;index"`
	ProjectID      *uuid.UUID `json:"project_id" gorm:"type:uuid;index"`
	CreatedByID    *uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	IssuedAt       *time.Time `json:"issued_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (i *Invoice) OwnerOrg() uuid.UUID   { return i.OrganizationID }
func (i *Invoice) StampOrg(id uuid.UUID) { i.OrganizationID = id }

// AuthzRow maps the invoice onto the engine's row shape.
func (i *Invoice) AuthzRow() authz.Row {
	return authz.Row{
		ID:             i.ID,
		Kind:           authz.KindFinances,
		OrganizationID: i.OrganizationID,
		ClientID:       i.ClientID,
		ProjectID:      i.ProjectID,
		CreatedByID:    i.CreatedByID,
	}
}
