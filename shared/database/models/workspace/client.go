package workspace

import (
	"time"

	"agencyops-backend/shared/authz"

	"github.com/google/uuid"
)

// Client is a customer account of the organization. The creator is its
// account owner, which the assigned_clients scope keys on.
type Client struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string     `json:"name" gorm:"size:200;not null"`
	ContactEmail   string     `json:"contact_email" gorm:"size:200"`
	Status         string     `json:"status" gorm:"default:'ACTIVE'"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	CreatedByID    *uuid.UUID `json:"created_by_id" gorm:"type:uuid;index"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (c *Client) OwnerOrg() uuid.UUID   { return c.OrganizationID }
func (c *Client) StampOrg(id uuid.UUID) { c.OrganizationID = id }

// AuthzRow maps the client onto the engine's row shape.
func (c *Client) AuthzRow() authz.Row {
	return authz.Row{
		ID:             c.ID,
		Kind:           authz.KindClients,
		OrganizationID: c.OrganizationID,
		CreatedByID:    c.CreatedByID,
	}
}
