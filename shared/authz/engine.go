package authz

import "errors"

// Decision reasons. All five are terminal and non-retryable; the HTTP layer
// maps them onto user-visible statuses (cross-tenant reads always surface
// as not-found so that row existence never leaks across organizations).
type Reason string

const (
	ReasonAllowed          Reason = "ALLOWED"
	ReasonNoRole           Reason = "NO_ROLE"
	ReasonPermissionDenied Reason = "PERMISSION_DENIED"
	ReasonTenantMismatch   Reason = "TENANT_MISMATCH"
	ReasonUnknownScope     Reason = "UNKNOWN_SCOPE"
	ReasonSelfEscalation   Reason = "SELF_ESCALATION"
)

// ErrSelfEscalation is returned by role-management checks when an action
// would grant or modify privilege at or above the actor's own level.
var ErrSelfEscalation = errors.New("role management action exceeds actor level")

// Request is one authorization question: may this actor perform this action
// on this resource kind, and which of the candidate rows may it see.
type Request struct {
	Actor         Actor
	Roles         []RoleGrant
	ResourceKind  ResourceKind
	Action        Action
	CandidateRows []Row
}

// Decision is the engine's answer. VisibleRows is the tenant-filtered,
// scope-filtered subset of the request's candidate rows, in input order.
type Decision struct {
	Allowed     bool
	Reason      Reason
	VisibleRows []Row
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason, VisibleRows: []Row{}}
}

// Authorize runs the full decision pipeline: tenant isolation, then the
// permission matrix union across held roles, then the most-permissive union
// of each permitting role's scope. It is a pure function of the request and
// safe for concurrent use.
func Authorize(req Request) Decision {
	if len(req.Roles) == 0 {
		return deny(ReasonNoRole)
	}

	// Rows from another organization are excluded before any further logic
	// sees them, never merely hidden.
	inTenant := make([]Row, 0, len(req.CandidateRows))
	for _, row := range req.CandidateRows {
		if row.OrganizationID == req.Actor.OrganizationID {
			inTenant = append(inTenant, row)
		}
	}
	if len(req.CandidateRows) > 0 && len(inTenant) == 0 {
		return deny(ReasonTenantMismatch)
	}

	// Permissive union across held roles: only roles that permit the
	// action contribute their scope to visibility.
	permitting := req.Roles[:0:0]
	for _, role := range req.Roles {
		if role.Matrix.Permits(req.ResourceKind, req.Action) {
			permitting = append(permitting, role)
		}
	}
	if len(permitting) == 0 {
		return deny(ReasonPermissionDenied)
	}

	predicates := make([]RowPredicate, 0, len(permitting))
	for _, role := range permitting {
		if !role.Scope.Valid() {
			// Misconfigured role: it contributes no visibility.
			continue
		}
		pred, err := ResolveScope(role.Scope, req.Actor)
		if err != nil {
			continue
		}
		predicates = append(predicates, pred)
	}
	if len(predicates) == 0 {
		return deny(ReasonUnknownScope)
	}

	visible := make([]Row, 0, len(inTenant))
	for _, row := range inTenant {
		for _, pred := range predicates {
			if pred(row) {
				visible = append(visible, row)
				break
			}
		}
	}

	return Decision{Allowed: true, Reason: ReasonAllowed, VisibleRows: visible}
}

// EffectiveMatrix returns the permissive union of the matrices of every
// held role, the single source for "what may this user do" summaries.
func EffectiveMatrix(roles []RoleGrant) Matrix {
	matrices := make([]Matrix, len(roles))
	for i, role := range roles {
		matrices[i] = role.Matrix
	}
	return Union(matrices...)
}

// MaxLevel returns the highest level among held roles, used for
// management-action checks when a user holds several roles.
func MaxLevel(roles []RoleGrant) int {
	level := LevelMin
	for _, role := range roles {
		if role.Level > level {
			level = role.Level
		}
	}
	return level
}
