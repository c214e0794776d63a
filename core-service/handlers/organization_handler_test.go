package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agencyops-backend/shared/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newHandlerDB swaps the shared connection for a sqlmock-backed one so
// handler tests can assert exactly which statements run.
func newHandlerDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return mock
}

// expectActor queues the identity resolution queries for a caller holding
// no role assignments.
func expectActor(mock sqlmock.Sqlmock, userID, orgID uuid.UUID) {
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "organization_id"}).
			AddRow(userID, "ACTIVE", orgID))
	mock.ExpectQuery(`SELECT (.+) FROM "role_assignments" WHERE user_id = \$1 AND organization_id = \$2`).
		WithArgs(userID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role_id", "organization_id"}))
}

func performRequest(handler gin.HandlerFunc, method, body string, userID uuid.UUID, params gin.Params) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, "/", nil)
	}
	req.Header.Set("X-User-ID", userID.String())

	ctx.Request = req
	ctx.Params = params
	handler(ctx)
	return recorder
}

func organizationRows(orgID uuid.UUID, name string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "subscription_tier", "status", "owner_id", "created_at", "updated_at",
	}).AddRow(orgID, name, "acme", "FREE", "ACTIVE", uuid.New(), now, now)
}

func TestUpdateOrganizationForeignTenantIsNotFound(t *testing.T) {
	mock := newHandlerDB(t)
	userID := uuid.New()
	actorOrg := uuid.New()
	foreignOrg := uuid.New()

	expectActor(mock, userID, actorOrg)

	recorder := performRequest(UpdateOrganization, http.MethodPut,
		`{"name":"hijacked"}`, userID,
		gin.Params{{Key: "id", Value: foreignOrg.String()}})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Organization not found")
	// No SELECT or UPDATE ever reached the organizations table.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrganizationForeignTenantIsNotFound(t *testing.T) {
	mock := newHandlerDB(t)
	userID := uuid.New()
	actorOrg := uuid.New()
	foreignOrg := uuid.New()

	expectActor(mock, userID, actorOrg)

	recorder := performRequest(DeleteOrganization, http.MethodDelete,
		"", userID, gin.Params{{Key: "id", Value: foreignOrg.String()}})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrganizationForeignTenantIsNotFound(t *testing.T) {
	mock := newHandlerDB(t)
	userID := uuid.New()
	actorOrg := uuid.New()
	foreignOrg := uuid.New()

	expectActor(mock, userID, actorOrg)

	recorder := performRequest(GetOrganization, http.MethodGet,
		"", userID, gin.Params{{Key: "id", Value: foreignOrg.String()}})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrganizationOwnTenantSucceeds(t *testing.T) {
	mock := newHandlerDB(t)
	userID := uuid.New()
	orgID := uuid.New()

	expectActor(mock, userID, orgID)
	mock.ExpectQuery(`SELECT (.+) FROM "organizations" WHERE id = \$1`).
		WithArgs(orgID, 1).
		WillReturnRows(organizationRows(orgID, "Acme"))
	mock.ExpectExec(`UPDATE "organizations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "organizations" WHERE id = \$1`).
		WithArgs(orgID, 1).
		WillReturnRows(organizationRows(orgID, "Acme Rebranded"))

	recorder := performRequest(UpdateOrganization, http.MethodPut,
		`{"name":"Acme Rebranded"}`, userID,
		gin.Params{{Key: "id", Value: orgID.String()}})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Acme Rebranded")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrganizationsListsOnlyCallerTenant(t *testing.T) {
	mock := newHandlerDB(t)
	userID := uuid.New()
	orgID := uuid.New()

	expectActor(mock, userID, orgID)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "organizations" WHERE id = \$1`).
		WithArgs(orgID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM "organizations" WHERE id = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(orgID, 10).
		WillReturnRows(organizationRows(orgID, "Acme"))

	recorder := performRequest(GetOrganizations, http.MethodGet, "", userID, nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), orgID.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
