package authz

// Role levels run 0 (lowest) through 5 (OWNER). Levels gate management
// actions only; ordinary resource access is governed by the permission
// matrix and scope.
const (
	LevelMin   = 0
	LevelOwner = 5
)

// CanManage reports whether a role at actingLevel may perform a management
// action (grant a role, deactivate a user, edit a role) against a role at
// targetLevel. Strictly-greater wins; the single exception is owner-to-owner
// parity, since an organization may have multiple owners.
func CanManage(actingLevel, targetLevel int) bool {
	if actingLevel == LevelOwner && targetLevel == LevelOwner {
		return true
	}
	return actingLevel > targetLevel
}

// CheckRoleEdit validates a role-management action at role-edit time.
// It denies any edit that touches a role at or above the actor's own level
// (owner parity excepted), which also blocks a role granting itself a
// higher level.
func CheckRoleEdit(actingLevel int, target RoleGrant) error {
	if !CanManage(actingLevel, target.Level) {
		return ErrSelfEscalation
	}
	return nil
}

// CheckRoleChange validates an edit that changes a role's level or matrix.
// The actor must outrank both the role's current level and the level it
// would end up at; raising a role beyond the actor's own reach is the
// self-escalation case.
func CheckRoleChange(actingLevel int, current RoleGrant, newLevel int) error {
	if !CanManage(actingLevel, current.Level) {
		return ErrSelfEscalation
	}
	if !CanManage(actingLevel, newLevel) {
		return ErrSelfEscalation
	}
	return nil
}
