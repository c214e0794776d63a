package authz

import (
	"fmt"

	"github.com/google/uuid"
)

// Scope is the row-level visibility rule attached to a role. It narrows
// which records within an already-permitted resource kind the role can see.
// The set of scopes is closed: anything outside it fails ParseScope and
// resolves to a deny-all predicate.
type Scope string

const (
	// ScopeAll grants visibility over every row of the organization.
	ScopeAll Scope = "all"
	// ScopeDepartment limits visibility to the actor's declared business
	// function (the resource kinds listed on the actor).
	ScopeDepartment Scope = "department"
	// ScopeAssignedProjects limits visibility to projects the actor is a
	// member of, and to rows belonging to those projects.
	ScopeAssignedProjects Scope = "assigned_projects"
	// ScopeTeam limits visibility to rows owned by the actor's teams.
	ScopeTeam Scope = "team"
	// ScopeAssignedClients limits visibility to clients the actor owns,
	// and to rows belonging to those clients.
	ScopeAssignedClients Scope = "assigned_clients"
	// ScopeAssigned limits visibility to rows directly assigned to or
	// created by the actor.
	ScopeAssigned Scope = "assigned"
	// ScopeOwnProjects is client-account visibility: rows belonging to the
	// client record the actor is linked to.
	ScopeOwnProjects Scope = "own_projects"
)

var scopes = map[Scope]bool{
	ScopeAll:              true,
	ScopeDepartment:       true,
	ScopeAssignedProjects: true,
	ScopeTeam:             true,
	ScopeAssignedClients:  true,
	ScopeAssigned:         true,
	ScopeOwnProjects:      true,
}

// ParseScope validates a scope keyword.
func ParseScope(s string) (Scope, error) {
	scope := Scope(s)
	if !scopes[scope] {
		return "", fmt.Errorf("unknown scope: %q", s)
	}
	return scope, nil
}

// Valid reports whether the scope is one of the recognized keywords.
func (s Scope) Valid() bool {
	return scopes[s]
}

// RowPredicate decides whether a single tenant-filtered row is visible.
type RowPredicate func(Row) bool

// denyAll is the fail-closed predicate for unrecognized configuration.
func denyAll(Row) bool { return false }

// ResolveScope translates a role's scope keyword into a row predicate for
// the acting user. The predicate assumes tenant isolation has already been
// applied; it only narrows within the actor's organization. An unrecognized
// scope resolves to a deny-all predicate and an error.
func ResolveScope(scope Scope, actor Actor) (RowPredicate, error) {
	switch scope {
	case ScopeAll:
		return func(Row) bool { return true }, nil

	case ScopeDepartment:
		kinds := make(map[ResourceKind]bool, len(actor.DepartmentKinds))
		for _, k := range actor.DepartmentKinds {
			kinds[k] = true
		}
		return func(row Row) bool {
			return kinds[row.Kind]
		}, nil

	case ScopeAssignedProjects:
		projects := uuidSet(actor.MemberProjectIDs)
		return func(row Row) bool {
			if id, ok := projectOf(row); ok {
				return projects[id]
			}
			return false
		}, nil

	case ScopeTeam:
		teams := uuidSet(actor.TeamIDs)
		return func(row Row) bool {
			if id, ok := teamOf(row); ok {
				return teams[id]
			}
			return false
		}, nil

	case ScopeAssignedClients:
		clients := uuidSet(actor.OwnedClientIDs)
		return func(row Row) bool {
			if id, ok := clientOf(row); ok {
				return clients[id]
			}
			return false
		}, nil

	case ScopeAssigned:
		return func(row Row) bool {
			if row.AssigneeID != nil && *row.AssigneeID == actor.UserID {
				return true
			}
			return row.CreatedByID != nil && *row.CreatedByID == actor.UserID
		}, nil

	case ScopeOwnProjects:
		if actor.LinkedClientID == nil {
			return denyAll, nil
		}
		linked := *actor.LinkedClientID
		return func(row Row) bool {
			if id, ok := clientOf(row); ok {
				return id == linked
			}
			return false
		}, nil
	}

	return denyAll, fmt.Errorf("unknown scope: %q", scope)
}

// projectOf resolves the project a row belongs to. Project rows belong to
// themselves.
func projectOf(row Row) (uuid.UUID, bool) {
	if row.ProjectID != nil {
		return *row.ProjectID, true
	}
	if row.Kind == KindProjects {
		return row.ID, true
	}
	return uuid.UUID{}, false
}

// teamOf resolves the owning team of a row. Team rows belong to themselves.
func teamOf(row Row) (uuid.UUID, bool) {
	if row.TeamID != nil {
		return *row.TeamID, true
	}
	if row.Kind == KindTeams {
		return row.ID, true
	}
	return uuid.UUID{}, false
}

// clientOf resolves the client a row belongs to. Client rows belong to
// themselves.
func clientOf(row Row) (uuid.UUID, bool) {
	if row.ClientID != nil {
		return *row.ClientID, true
	}
	if row.Kind == KindClients {
		return row.ID, true
	}
	return uuid.UUID{}, false
}

func uuidSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
