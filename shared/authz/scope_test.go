package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestParseScope(t *testing.T) {
	for _, keyword := range []string{
		"all", "department", "assigned_projects", "team",
		"assigned_clients", "assigned", "own_projects",
	} {
		scope, err := ParseScope(keyword)
		assert.NoError(t, err, keyword)
		assert.True(t, scope.Valid())
	}

	_, err := ParseScope("everything")
	assert.Error(t, err)
	assert.False(t, Scope("everything").Valid())
}

func TestResolveScopeAll(t *testing.T) {
	actor := Actor{UserID: uuid.New(), OrganizationID: uuid.New()}
	pred, err := ResolveScope(ScopeAll, actor)
	require.NoError(t, err)

	assert.True(t, pred(Row{ID: uuid.New(), Kind: KindTasks, OrganizationID: actor.OrganizationID}))
}

func TestResolveScopeAssigned(t *testing.T) {
	actor := Actor{UserID: uuid.New(), OrganizationID: uuid.New()}
	pred, err := ResolveScope(ScopeAssigned, actor)
	require.NoError(t, err)

	mine := Row{ID: uuid.New(), Kind: KindTasks, AssigneeID: ptr(actor.UserID)}
	authored := Row{ID: uuid.New(), Kind: KindTasks, CreatedByID: ptr(actor.UserID)}
	other := Row{ID: uuid.New(), Kind: KindTasks, AssigneeID: ptr(uuid.New())}
	orphan := Row{ID: uuid.New(), Kind: KindTasks}

	assert.True(t, pred(mine))
	assert.True(t, pred(authored))
	assert.False(t, pred(other))
	assert.False(t, pred(orphan))
}

func TestResolveScopeTeam(t *testing.T) {
	teamID := uuid.New()
	actor := Actor{UserID: uuid.New(), TeamIDs: []uuid.UUID{teamID}}
	pred, err := ResolveScope(ScopeTeam, actor)
	require.NoError(t, err)

	assert.True(t, pred(Row{ID: uuid.New(), Kind: KindTasks, TeamID: ptr(teamID)}))
	assert.False(t, pred(Row{ID: uuid.New(), Kind: KindTasks, TeamID: ptr(uuid.New())}))
	assert.False(t, pred(Row{ID: uuid.New(), Kind: KindTasks}))

	// A team row is owned by itself.
	assert.True(t, pred(Row{ID: teamID, Kind: KindTeams}))
}

func TestResolveScopeAssignedProjects(t *testing.T) {
	projectID := uuid.New()
	actor := Actor{UserID: uuid.New(), MemberProjectIDs: []uuid.UUID{projectID}}
	pred, err := ResolveScope(ScopeAssignedProjects, actor)
	require.NoError(t, err)

	// The project itself and its children are visible.
	assert.True(t, pred(Row{ID: projectID, Kind: KindProjects}))
	assert.True(t, pred(Row{ID: uuid.New(), Kind: KindTasks, ProjectID: ptr(projectID)}))
	assert.True(t, pred(Row{ID: uuid.New(), Kind: KindFinances, ProjectID: ptr(projectID)}))

	assert.False(t, pred(Row{ID: uuid.New(), Kind: KindProjects}))
	assert.False(t, pred(Row{ID: uuid.New(), Kind: KindTasks, ProjectID: ptr(uuid.New())}))
}

func TestResolveScopeAssignedClients(t *testing.T) {
	clientID := uuid.New()
	actor := Actor{UserID: uuid.New(), OwnedClientIDs: []uuid.UUID{clientID}}
	pred, err := ResolveScope(ScopeAssignedClients, actor)
	require.NoError(t, err)

	assert.True(t, pred(Row{ID: clientID, Kind: KindClients}))
	assert.True(t, pred(Row{ID: uuid.New(), Kind: KindProjects, ClientID: ptr(clientID)}))
	assert.True(t, pred(Row{ID: uuid.New(), Kind: KindFinances, ClientID: ptr(clientID)}))
	assert.False(t, pred(Row{ID: uuid.New(), Kind: KindClients}))
}

func TestResolveScopeOwnProjects(t *testing.T) {
	clientID := uuid.New()
	actor := Actor{UserID: uuid.New(), LinkedClientID: ptr(clientID)}
	pred, err := ResolveScope(ScopeOwnProjects, actor)
	require.NoError(t, err)

	assert.True(t, pred(Row{ID: uuid.New(), Kind: KindProjects, ClientID: ptr(clientID)}))
	assert.True(t, pred(Row{ID: clientID, Kind: KindClients}))
	assert.False(t, pred(Row{ID: uuid.New(), Kind: KindProjects, ClientID: ptr(uuid.New())}))
	assert.False(t, pred(Row{ID: uuid.New(), Kind: KindProjects}))
}

func TestResolveScopeOwnProjectsWithoutLink(t *testing.T) {
	// A client-scoped role on a user with no linked client sees nothing.
	pred, err := ResolveScope(ScopeOwnProjects, Actor{UserID: uuid.New()})
	require.NoError(t, err)
	assert.False(t, pred(Row{ID: uuid.New(), Kind: KindProjects, ClientID: ptr(uuid.New())}))
}

func TestResolveScopeDepartment(t *testing.T) {
	actor := Actor{UserID: uuid.New(), DepartmentKinds: []ResourceKind{KindFinances, KindReports}}
	pred, err := ResolveScope(ScopeDepartment, actor)
	require.NoError(t, err)

	assert.True(t, pred(Row{ID: uuid.New(), Kind: KindFinances}))
	assert.True(t, pred(Row{ID: uuid.New(), Kind: KindReports}))
	assert.False(t, pred(Row{ID: uuid.New(), Kind: KindTasks}))
}

func TestResolveScopeFailsClosedOnUnknown(t *testing.T) {
	pred, err := ResolveScope(Scope("galaxy"), Actor{UserID: uuid.New()})
	assert.Error(t, err)

	// The returned predicate denies every row.
	assert.False(t, pred(Row{ID: uuid.New(), Kind: KindTasks}))
	assert.False(t, pred(Row{ID: uuid.New(), Kind: KindProjects}))
}
