package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustArchetype(t *testing.T, name string) RoleGrant {
	t.Helper()
	archetype, ok := FindArchetype(name)
	require.True(t, ok, "archetype %s missing from catalog", name)
	return RoleGrant{
		Name:   archetype.Name,
		Level:  archetype.Level,
		Scope:  archetype.Scope,
		Matrix: archetype.Matrix,
	}
}

func TestAuthorizeDeniesWithoutRoles(t *testing.T) {
	orgID := uuid.New()
	decision := Authorize(Request{
		Actor:        Actor{UserID: uuid.New(), OrganizationID: orgID},
		ResourceKind: KindTasks,
		Action:       ActionRead,
		CandidateRows: []Row{
			{ID: uuid.New(), Kind: KindTasks, OrganizationID: orgID},
		},
	})

	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNoRole, decision.Reason)
	assert.Empty(t, decision.VisibleRows)
}

// Scenario: a SPECIALIST sees only the task assigned to them, and cannot
// delete tasks at all.
func TestAuthorizeSpecialistAssignedScope(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()
	actor := Actor{UserID: userID, OrganizationID: orgID}
	specialist := mustArchetype(t, "SPECIALIST")

	mine := Row{ID: uuid.New(), Kind: KindTasks, OrganizationID: orgID, AssigneeID: ptr(userID)}
	theirs := Row{ID: uuid.New(), Kind: KindTasks, OrganizationID: orgID, AssigneeID: ptr(uuid.New())}

	decision := Authorize(Request{
		Actor:         actor,
		Roles:         []RoleGrant{specialist},
		ResourceKind:  KindTasks,
		Action:        ActionRead,
		CandidateRows: []Row{mine, theirs},
	})

	require.True(t, decision.Allowed)
	require.Len(t, decision.VisibleRows, 1)
	assert.Equal(t, mine.ID, decision.VisibleRows[0].ID)

	// Delete is not in the specialist matrix.
	denied := Authorize(Request{
		Actor:         actor,
		Roles:         []RoleGrant{specialist},
		ResourceKind:  KindTasks,
		Action:        ActionDelete,
		CandidateRows: []Row{mine, theirs},
	})
	assert.False(t, denied.Allowed)
	assert.Equal(t, ReasonPermissionDenied, denied.Reason)
}

// Scenario: reading a row from another organization is a tenant mismatch
// with an empty visible set, regardless of the role held.
func TestAuthorizeCrossTenantRead(t *testing.T) {
	orgA := uuid.New()
	orgB := uuid.New()
	actor := Actor{UserID: uuid.New(), OrganizationID: orgB}

	decision := Authorize(Request{
		Actor:        actor,
		Roles:        []RoleGrant{mustArchetype(t, "OWNER")},
		ResourceKind: KindClients,
		Action:       ActionRead,
		CandidateRows: []Row{
			{ID: uuid.New(), Kind: KindClients, OrganizationID: orgA},
		},
	})

	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonTenantMismatch, decision.Reason)
	assert.Empty(t, decision.VisibleRows)
}

// Scenario: TEAM_LEAD plus VIEWER. For reads the broader VIEWER scope wins
// via union; for deletes only the team scope applies.
func TestAuthorizeMultiRoleScopeUnion(t *testing.T) {
	orgID := uuid.New()
	teamID := uuid.New()
	actor := Actor{UserID: uuid.New(), OrganizationID: orgID, TeamIDs: []uuid.UUID{teamID}}
	roles := []RoleGrant{mustArchetype(t, "TEAM_LEAD"), mustArchetype(t, "VIEWER")}

	teamTask := Row{ID: uuid.New(), Kind: KindTasks, OrganizationID: orgID, TeamID: ptr(teamID)}
	otherTask := Row{ID: uuid.New(), Kind: KindTasks, OrganizationID: orgID, TeamID: ptr(uuid.New())}

	read := Authorize(Request{
		Actor:         actor,
		Roles:         roles,
		ResourceKind:  KindTasks,
		Action:        ActionRead,
		CandidateRows: []Row{teamTask, otherTask},
	})
	require.True(t, read.Allowed)
	assert.Len(t, read.VisibleRows, 2, "viewer's all scope widens reads org-wide")

	del := Authorize(Request{
		Actor:         actor,
		Roles:         roles,
		ResourceKind:  KindTasks,
		Action:        ActionDelete,
		CandidateRows: []Row{teamTask, otherTask},
	})
	require.True(t, del.Allowed)
	require.Len(t, del.VisibleRows, 1, "only the team-lead role permits delete")
	assert.Equal(t, teamTask.ID, del.VisibleRows[0].ID)
}

func TestAuthorizeUnknownScopeFailsClosed(t *testing.T) {
	orgID := uuid.New()
	broken := RoleGrant{
		Name:   "LEGACY",
		Level:  3,
		Scope:  Scope("everything"),
		Matrix: Matrix{KindTasks: {ActionRead}},
	}

	decision := Authorize(Request{
		Actor:        Actor{UserID: uuid.New(), OrganizationID: orgID},
		Roles:        []RoleGrant{broken},
		ResourceKind: KindTasks,
		Action:       ActionRead,
		CandidateRows: []Row{
			{ID: uuid.New(), Kind: KindTasks, OrganizationID: orgID},
		},
	})

	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonUnknownScope, decision.Reason)
	assert.Empty(t, decision.VisibleRows)
}

func TestAuthorizeMixedTenantRowsAreDropped(t *testing.T) {
	orgID := uuid.New()
	foreign := uuid.New()
	actor := Actor{UserID: uuid.New(), OrganizationID: orgID}

	inOrg := Row{ID: uuid.New(), Kind: KindProjects, OrganizationID: orgID}
	crossOrg := Row{ID: uuid.New(), Kind: KindProjects, OrganizationID: foreign}

	decision := Authorize(Request{
		Actor:         actor,
		Roles:         []RoleGrant{mustArchetype(t, "OWNER")},
		ResourceKind:  KindProjects,
		Action:        ActionRead,
		CandidateRows: []Row{inOrg, crossOrg},
	})

	require.True(t, decision.Allowed)
	require.Len(t, decision.VisibleRows, 1)
	assert.Equal(t, inOrg.ID, decision.VisibleRows[0].ID)
}

// Hard invariant: no role and no scope ever exposes a cross-tenant row.
func TestAuthorizeTenantIsolationAcrossCatalog(t *testing.T) {
	orgID := uuid.New()
	foreignOrg := uuid.New()
	userID := uuid.New()
	clientID := uuid.New()

	// Actor with every ownership signal pointing at the foreign rows, so
	// scope predicates alone would match them.
	foreignTeam := uuid.New()
	foreignProject := uuid.New()
	actor := Actor{
		UserID:           userID,
		OrganizationID:   orgID,
		TeamIDs:          []uuid.UUID{foreignTeam},
		MemberProjectIDs: []uuid.UUID{foreignProject},
		OwnedClientIDs:   []uuid.UUID{clientID},
		LinkedClientID:   ptr(clientID),
		DepartmentKinds:  AllResourceKinds(),
	}

	foreignRows := []Row{
		{ID: uuid.New(), Kind: KindTasks, OrganizationID: foreignOrg, AssigneeID: ptr(userID)},
		{ID: uuid.New(), Kind: KindTasks, OrganizationID: foreignOrg, TeamID: ptr(foreignTeam)},
		{ID: foreignProject, Kind: KindProjects, OrganizationID: foreignOrg},
		{ID: clientID, Kind: KindClients, OrganizationID: foreignOrg},
	}

	for _, archetype := range DefaultRoleCatalog() {
		role := RoleGrant{
			Name:   archetype.Name,
			Level:  archetype.Level,
			Scope:  archetype.Scope,
			Matrix: archetype.Matrix,
		}
		for _, kind := range AllResourceKinds() {
			decision := Authorize(Request{
				Actor:         actor,
				Roles:         []RoleGrant{role},
				ResourceKind:  kind,
				Action:        ActionRead,
				CandidateRows: foreignRows,
			})
			assert.Empty(t, decision.VisibleRows,
				"role %s leaked cross-tenant rows for kind %s", archetype.Name, kind)
		}
	}
}

// Adding a role can only grow the permitted pairs and the visible set.
func TestAuthorizeAddingRoleIsMonotonic(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()
	actor := Actor{UserID: userID, OrganizationID: orgID}

	rows := []Row{
		{ID: uuid.New(), Kind: KindTasks, OrganizationID: orgID, AssigneeID: ptr(userID)},
		{ID: uuid.New(), Kind: KindTasks, OrganizationID: orgID},
		{ID: uuid.New(), Kind: KindTasks, OrganizationID: orgID, AssigneeID: ptr(uuid.New())},
	}

	specialist := mustArchetype(t, "SPECIALIST")
	viewer := mustArchetype(t, "VIEWER")

	before := Authorize(Request{
		Actor: actor, Roles: []RoleGrant{specialist},
		ResourceKind: KindTasks, Action: ActionRead, CandidateRows: rows,
	})
	after := Authorize(Request{
		Actor: actor, Roles: []RoleGrant{specialist, viewer},
		ResourceKind: KindTasks, Action: ActionRead, CandidateRows: rows,
	})

	require.True(t, before.Allowed)
	require.True(t, after.Allowed)
	assert.GreaterOrEqual(t, len(after.VisibleRows), len(before.VisibleRows))

	seen := make(map[uuid.UUID]bool)
	for _, row := range after.VisibleRows {
		seen[row.ID] = true
	}
	for _, row := range before.VisibleRows {
		assert.True(t, seen[row.ID], "row visible before must stay visible after")
	}
}

func TestAuthorizeIsIdempotent(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()
	req := Request{
		Actor:        Actor{UserID: userID, OrganizationID: orgID},
		Roles:        []RoleGrant{mustArchetype(t, "MANAGER")},
		ResourceKind: KindTasks,
		Action:       ActionRead,
		CandidateRows: []Row{
			{ID: uuid.New(), Kind: KindTasks, OrganizationID: orgID, CreatedByID: ptr(userID)},
			{ID: uuid.New(), Kind: KindTasks, OrganizationID: orgID},
		},
	}

	first := Authorize(req)
	second := Authorize(req)
	assert.Equal(t, first, second)
}

func TestEffectiveMatrix(t *testing.T) {
	roles := []RoleGrant{mustArchetype(t, "TEAM_LEAD"), mustArchetype(t, "VIEWER")}
	effective := EffectiveMatrix(roles)

	assert.True(t, effective.Permits(KindTasks, ActionDelete))
	assert.True(t, effective.Permits(KindClients, ActionRead))
	assert.False(t, effective.Permits(KindUsers, ActionCreate))
}
