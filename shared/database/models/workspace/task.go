package workspace

import (
	"time"

	"agencyops-backend/shared/authz"

	"github.com/google/uuid"
)

// Task is a unit of work inside a project. Assignee and creator are the
// ownership signals the assigned scope reads.
type Task struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string     `json:"title" gorm:"size:300;not null"`
	Status         string     `json:"status" gorm:"default:'OPEN'"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	ProjectID      *uuid.UUID `json:"project_id" gorm:"type:uuid;index"`
	TeamID         *uuid.UUID `json:"team_id" gorm:"type:uuid;index"`
	AssigneeID     *uuid.UUID `json:"assignee_id" gorm:"type:uuid;index"`
	CreatedByID    *uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	DueAt          *time.Time `json:"due_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (t *Task) OwnerOrg() uuid.UUID   { return t.OrganizationID }
func (t *Task) StampOrg(id uuid.UUID) { t.OrganizationID = id }

// AuthzRow maps the task onto the engine's row shape.
func (t *Task) AuthzRow() authz.Row {
	return authz.Row{
		ID:             t.ID,
		Kind:           authz.KindTasks,
		OrganizationID: t.OrganizationID,
		ProjectID:      t.ProjectID,
		TeamID:         t.TeamID,
		AssigneeID:     t.AssigneeID,
		CreatedByID:    t.CreatedByID,
	}
}
