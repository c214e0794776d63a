package handlers

import (
	"encoding/binary"
	"net/http"
	"testing"
	"time"

	"agencyops-backend/shared/utils/cache"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// expectActorWithLevel queues the identity queries for a caller holding one
// role at the given level.
func expectActorWithLevel(mock sqlmock.Sqlmock, userID, orgID uuid.UUID, level int) {
	grantRoleID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "organization_id"}).
			AddRow(userID, "ACTIVE", orgID))
	mock.ExpectQuery(`SELECT (.+) FROM "role_assignments" WHERE user_id = \$1 AND organization_id = \$2`).
		WithArgs(userID, orgID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role_id", "organization_id"}).
			AddRow(uuid.New(), userID, grantRoleID, orgID))
	mock.ExpectQuery(`SELECT (.+) FROM "roles" WHERE "roles"\."id" = \$1`).
		WithArgs(grantRoleID).
		WillReturnRows(roleRows(grantRoleID, orgID, "Operations Director", level))
}

func roleRows(roleID, orgID uuid.UUID, name string, level int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "description", "level", "scope", "matrix", "is_default", "organization_id", "created_at", "updated_at",
	}).AddRow(roleID, name, "", level, "all", []byte(`{"roles":["read","update"]}`), false, orgID, now, now)
}

func useTestCache(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetCacheManager(cache.NewCacheManager(client))
	t.Cleanup(func() { cache.SetCacheManager(nil) })
}

func advisoryLockKey(orgID uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(orgID[:8]))
}

func TestUpdateRoleRunsUnderOrganizationLock(t *testing.T) {
	mock := newHandlerDB(t)
	useTestCache(t)
	userID := uuid.New()
	orgID := uuid.New()
	roleID := uuid.New()

	expectActorWithLevel(mock, userID, orgID, 5)

	// The role read, hierarchy check and write all happen inside one
	// transaction holding the per-organization advisory lock.
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(advisoryLockKey(orgID)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "roles" WHERE organization_id = \$1 AND id = \$2`).
		WithArgs(orgID, roleID, 1).
		WillReturnRows(roleRows(roleID, orgID, "Project Manager", 2))
	mock.ExpectExec(`UPDATE "roles" SET (.+)organization_id = \$4`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "roles" WHERE organization_id = \$1 AND id = \$2`).
		WithArgs(orgID, roleID, 1).
		WillReturnRows(roleRows(roleID, orgID, "Project Manager", 3))
	mock.ExpectCommit()

	recorder := performRequest(UpdateRole, http.MethodPut,
		`{"level":3}`, userID,
		gin.Params{{Key: "id", Value: roleID.String()}})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoleEscalationCheckSeesLockedState(t *testing.T) {
	mock := newHandlerDB(t)
	userID := uuid.New()
	orgID := uuid.New()
	roleID := uuid.New()

	expectActorWithLevel(mock, userID, orgID, 2)

	// The stored role outranks the caller once the lock is held, so the
	// transaction rolls back without touching the row.
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(advisoryLockKey(orgID)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "roles" WHERE organization_id = \$1 AND id = \$2`).
		WithArgs(orgID, roleID, 1).
		WillReturnRows(roleRows(roleID, orgID, "Agency Director", 4))
	mock.ExpectRollback()

	recorder := performRequest(UpdateRole, http.MethodPut,
		`{"name":"Renamed"}`, userID,
		gin.Params{{Key: "id", Value: roleID.String()}})

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "SELF_ESCALATION")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoleRunsUnderOrganizationLock(t *testing.T) {
	mock := newHandlerDB(t)
	useTestCache(t)
	userID := uuid.New()
	orgID := uuid.New()
	roleID := uuid.New()

	expectActorWithLevel(mock, userID, orgID, 5)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(advisoryLockKey(orgID)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "roles" WHERE organization_id = \$1 AND id = \$2`).
		WithArgs(orgID, roleID, 1).
		WillReturnRows(roleRows(roleID, orgID, "Custom Auditor", 1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "role_assignments" WHERE organization_id = \$1 AND role_id = \$2`).
		WithArgs(orgID, roleID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM "roles" WHERE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	recorder := performRequest(DeleteRole, http.MethodDelete,
		"", userID, gin.Params{{Key: "id", Value: roleID.String()}})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
