package handlers

import (
	"testing"

	"agencyops-backend/shared/authz"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestLoadCandidateRowsProjects(t *testing.T) {
	db, mock := newMockDB(t)
	orgID := uuid.New()
	teamID := uuid.New()
	creatorID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "projects" WHERE organization_id = \$1`).
		WithArgs(orgID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "team_id", "created_by_id"}).
			AddRow(uuid.New(), orgID, teamID, creatorID).
			AddRow(uuid.New(), orgID, nil, nil))

	rows, stored, err := loadCandidateRows(db, orgID, authz.KindProjects)
	require.NoError(t, err)
	assert.True(t, stored)
	require.Len(t, rows, 2)

	assert.Equal(t, authz.KindProjects, rows[0].Kind)
	assert.Equal(t, orgID, rows[0].OrganizationID)
	require.NotNil(t, rows[0].TeamID)
	assert.Equal(t, teamID, *rows[0].TeamID)
	require.NotNil(t, rows[0].CreatedByID)
	assert.Equal(t, creatorID, *rows[0].CreatedByID)

	assert.Nil(t, rows[1].TeamID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCandidateRowsTasksCarryAssignee(t *testing.T) {
	db, mock := newMockDB(t)
	orgID := uuid.New()
	assigneeID := uuid.New()
	projectID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "tasks" WHERE organization_id = \$1`).
		WithArgs(orgID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "project_id", "assignee_id"}).
			AddRow(uuid.New(), orgID, projectID, assigneeID))

	rows, stored, err := loadCandidateRows(db, orgID, authz.KindTasks)
	require.NoError(t, err)
	assert.True(t, stored)
	require.Len(t, rows, 1)

	assert.Equal(t, authz.KindTasks, rows[0].Kind)
	require.NotNil(t, rows[0].AssigneeID)
	assert.Equal(t, assigneeID, *rows[0].AssigneeID)
	require.NotNil(t, rows[0].ProjectID)
	assert.Equal(t, projectID, *rows[0].ProjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCandidateRowsInvoicesAuthorizeAsFinances(t *testing.T) {
	db, mock := newMockDB(t)
	orgID := uuid.New()
	clientID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "invoices" WHERE organization_id = \$1`).
		WithArgs(orgID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "client_id"}).
			AddRow(uuid.New(), orgID, clientID))

	rows, stored, err := loadCandidateRows(db, orgID, authz.KindFinances)
	require.NoError(t, err)
	assert.True(t, stored)
	require.Len(t, rows, 1)

	assert.Equal(t, authz.KindFinances, rows[0].Kind)
	require.NotNil(t, rows[0].ClientID)
	assert.Equal(t, clientID, *rows[0].ClientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCandidateRowsClientsAndTeams(t *testing.T) {
	db, mock := newMockDB(t)
	orgID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "clients" WHERE organization_id = \$1`).
		WithArgs(orgID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "created_by_id"}).
			AddRow(uuid.New(), orgID, ownerID))

	clientRows, stored, err := loadCandidateRows(db, orgID, authz.KindClients)
	require.NoError(t, err)
	assert.True(t, stored)
	require.Len(t, clientRows, 1)
	assert.Equal(t, authz.KindClients, clientRows[0].Kind)
	require.NotNil(t, clientRows[0].CreatedByID)
	assert.Equal(t, ownerID, *clientRows[0].CreatedByID)

	mock.ExpectQuery(`SELECT (.+) FROM "teams" WHERE organization_id = \$1`).
		WithArgs(orgID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id"}).
			AddRow(uuid.New(), orgID))

	teamRows, stored, err := loadCandidateRows(db, orgID, authz.KindTeams)
	require.NoError(t, err)
	assert.True(t, stored)
	require.Len(t, teamRows, 1)
	assert.Equal(t, authz.KindTeams, teamRows[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCandidateRowsUnstoredKindsNeedDescriptors(t *testing.T) {
	db, mock := newMockDB(t)

	for _, kind := range []authz.ResourceKind{
		authz.KindUsers, authz.KindRoles, authz.KindReports, authz.KindSettings,
	} {
		rows, stored, err := loadCandidateRows(db, uuid.New(), kind)
		require.NoError(t, err)
		assert.False(t, stored)
		assert.Empty(t, rows)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
