package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanManageStrictOrdering(t *testing.T) {
	assert.True(t, CanManage(4, 3))
	assert.True(t, CanManage(5, 0))
	assert.True(t, CanManage(1, 0))

	// Equal or lower level never manages, except owner parity.
	assert.False(t, CanManage(3, 3))
	assert.False(t, CanManage(2, 4))
	assert.False(t, CanManage(0, 0))
}

func TestCanManageOwnerParity(t *testing.T) {
	// Multiple owners may coexist, so an owner may manage another owner.
	assert.True(t, CanManage(LevelOwner, LevelOwner))
}

func TestCanManageExhaustive(t *testing.T) {
	for acting := LevelMin; acting <= LevelOwner; acting++ {
		for target := LevelMin; target <= LevelOwner; target++ {
			want := acting > target || (acting == LevelOwner && target == LevelOwner)
			assert.Equal(t, want, CanManage(acting, target),
				"acting=%d target=%d", acting, target)
		}
	}
}

func TestCheckRoleEdit(t *testing.T) {
	director := RoleGrant{Name: "DIRECTOR", Level: 4, Scope: ScopeAll}

	// An admin at level 4 cannot edit a level-4 role.
	assert.ErrorIs(t, CheckRoleEdit(4, director), ErrSelfEscalation)

	// An owner can.
	assert.NoError(t, CheckRoleEdit(LevelOwner, director))

	// Owner granting OWNER to a second user is the parity exception.
	owner := RoleGrant{Name: "OWNER", Level: LevelOwner, Scope: ScopeAll}
	assert.NoError(t, CheckRoleEdit(LevelOwner, owner))
}

func TestCheckRoleChangeBlocksEscalation(t *testing.T) {
	team := RoleGrant{Name: "TEAM_LEAD", Level: 2, Scope: ScopeTeam}

	// Raising a role to the actor's own level is denied.
	assert.ErrorIs(t, CheckRoleChange(3, team, 3), ErrSelfEscalation)
	assert.ErrorIs(t, CheckRoleChange(3, team, 5), ErrSelfEscalation)

	// Raising it below the actor's level is fine.
	assert.NoError(t, CheckRoleChange(4, team, 3))

	// Editing a role the actor does not outrank is denied outright.
	admin := RoleGrant{Name: "ADMIN", Level: 4, Scope: ScopeAll}
	assert.ErrorIs(t, CheckRoleChange(4, admin, 1), ErrSelfEscalation)
}

func TestMaxLevel(t *testing.T) {
	roles := []RoleGrant{
		{Name: "VIEWER", Level: 0},
		{Name: "TEAM_LEAD", Level: 2},
		{Name: "MANAGER", Level: 3},
	}
	assert.Equal(t, 3, MaxLevel(roles))
	assert.Equal(t, LevelMin, MaxLevel(nil))
}
