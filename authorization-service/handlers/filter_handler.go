package handlers

import (
	"net/http"

	"agencyops-backend/shared/authz"
	"agencyops-backend/shared/database"
	"agencyops-backend/shared/database/models"
	"agencyops-backend/shared/database/models/workspace"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RowDescriptor is the wire form of one candidate row: the
// authorization-relevant attributes of a record the caller wants filtered.
type RowDescriptor struct {
	ID             string  `json:"id" binding:"required"`
	OrganizationID string  `json:"organization_id" binding:"required"`
	AssigneeID     *string `json:"assignee_id,omitempty"`
	CreatedByID    *string `json:"created_by_id,omitempty"`
	ProjectID      *string `json:"project_id,omitempty"`
	ClientID       *string `json:"client_id,omitempty"`
	TeamID         *string `json:"team_id,omitempty"`
}

// FilterRowsRequest asks for the visible subset of candidate rows. Rows may
// be omitted for workspace kinds; the service then loads the user's
// organization rows itself.
type FilterRowsRequest struct {
	UserID   string          `json:"user_id" binding:"required"`
	Resource string          `json:"resource" binding:"required"`
	Action   string          `json:"action" binding:"required"`
	Rows     []RowDescriptor `json:"rows"`
}

// FilterRowsResponse carries the decision plus the ids of visible rows.
type FilterRowsResponse struct {
	Allowed    bool     `json:"allowed"`
	Reason     string   `json:"reason,omitempty"`
	VisibleIDs []string `json:"visible_ids"`
}

// FilterRows runs the full decision pipeline over caller-supplied rows
// @Summary Filter candidate rows
// @Description Decide an action and return the subset of candidate rows the user may see. Omit rows to filter the organization's stored workspace rows.
// @Tags authz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param filter body FilterRowsRequest true "Row filter request"
// @Success 200 {object} FilterRowsResponse "Decision with visible row ids"
// @Failure 400 {object} map[string]interface{} "Invalid request format"
// @Router /authz/filter [post]
func FilterRows(c *gin.Context) {
	var req FilterRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	kind, err := authz.ParseResourceKind(req.Resource)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource kind"})
		return
	}
	action, err := authz.ParseAction(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	rows := make([]authz.Row, 0, len(req.Rows))
	for _, descriptor := range req.Rows {
		row, err := descriptor.toRow(kind)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid row descriptor", "details": err.Error()})
			return
		}
		rows = append(rows, row)
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusOK, FilterRowsResponse{
			Allowed: false, Reason: string(authz.ReasonNoRole), VisibleIDs: []string{},
		})
		return
	}
	if !user.Active() {
		c.JSON(http.StatusOK, FilterRowsResponse{
			Allowed: false, Reason: string(authz.ReasonNoRole), VisibleIDs: []string{},
		})
		return
	}

	if len(rows) == 0 {
		loaded, stored, err := loadCandidateRows(db, user.OrganizationID, kind)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load candidate rows"})
			return
		}
		if stored {
			rows = loaded
		}
	}

	grants, err := loadGrants(db, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load roles"})
		return
	}
	actor, err := loadActor(db, &user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve actor"})
		return
	}

	decision := authz.Authorize(authz.Request{
		Actor:         actor,
		Roles:         grants,
		ResourceKind:  kind,
		Action:        action,
		CandidateRows: rows,
	})

	visibleIDs := make([]string, 0, len(decision.VisibleRows))
	for _, row := range decision.VisibleRows {
		visibleIDs = append(visibleIDs, row.ID.String())
	}

	response := FilterRowsResponse{
		Allowed:    decision.Allowed,
		VisibleIDs: visibleIDs,
	}
	if !decision.Allowed {
		response.Reason = string(decision.Reason)
	}
	c.JSON(http.StatusOK, response)
}

// loadCandidateRows loads the organization's stored rows for kinds backed
// by a workspace model, mapped through the model's AuthzRow shape. Kinds
// without stored rows here (users, roles, reports, settings) report
// stored=false and the caller must supply descriptors.
func loadCandidateRows(db *gorm.DB, orgID uuid.UUID, kind authz.ResourceKind) (rows []authz.Row, stored bool, err error) {
	switch kind {
	case authz.KindProjects:
		var records []workspace.Project
		if err = db.Where("organization_id = ?", orgID).Find(&records).Error; err != nil {
			return nil, false, err
		}
		for i := range records {
			rows = append(rows, records[i].AuthzRow())
		}
		return rows, true, nil
	case authz.KindTasks:
		var records []workspace.Task
		if err = db.Where("organization_id = ?", orgID).Find(&records).Error; err != nil {
			return nil, false, err
		}
		for i := range records {
			rows = append(rows, records[i].AuthzRow())
		}
		return rows, true, nil
	case authz.KindClients:
		var records []workspace.Client
		if err = db.Where("organization_id = ?", orgID).Find(&records).Error; err != nil {
			return nil, false, err
		}
		for i := range records {
			rows = append(rows, records[i].AuthzRow())
		}
		return rows, true, nil
	case authz.KindFinances:
		var records []workspace.Invoice
		if err = db.Where("organization_id = ?", orgID).Find(&records).Error; err != nil {
			return nil, false, err
		}
		for i := range records {
			rows = append(rows, records[i].AuthzRow())
		}
		return rows, true, nil
	case authz.KindTeams:
		var records []workspace.Team
		if err = db.Where("organization_id = ?", orgID).Find(&records).Error; err != nil {
			return nil, false, err
		}
		for i := range records {
			rows = append(rows, records[i].AuthzRow())
		}
		return rows, true, nil
	default:
		return nil, false, nil
	}
}

func (d RowDescriptor) toRow(kind authz.ResourceKind) (authz.Row, error) {
	row := authz.Row{Kind: kind}

	id, err := uuid.Parse(d.ID)
	if err != nil {
		return row, err
	}
	row.ID = id

	orgID, err := uuid.Parse(d.OrganizationID)
	if err != nil {
		return row, err
	}
	row.OrganizationID = orgID

	assign := func(dst **uuid.UUID, src *string) error {
		if src == nil {
			return nil
		}
		parsed, err := uuid.Parse(*src)
		if err != nil {
			return err
		}
		*dst = &parsed
		return nil
	}
	if err := assign(&row.AssigneeID, d.AssigneeID); err != nil {
		return row, err
	}
	if err := assign(&row.CreatedByID, d.CreatedByID); err != nil {
		return row, err
	}
	if err := assign(&row.ProjectID, d.ProjectID); err != nil {
		return row, err
	}
	if err := assign(&row.ClientID, d.ClientID); err != nil {
		return row, err
	}
	if err := assign(&row.TeamID, d.TeamID); err != nil {
		return row, err
	}
	return row, nil
}
