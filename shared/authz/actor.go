package authz

import "github.com/google/uuid"

// Actor is the acting user as seen by the authorization engine. Identity
// resolution happens upstream; the engine trusts these fields and reads
// nothing else about the user. Ownership lookups (team membership, project
// membership, owned clients) are resolved by the persistence layer before
// the engine is invoked so that every call carries its own data and no
// request-scoped state is shared between goroutines.
type Actor struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID

	// TeamIDs are the teams the actor leads or belongs to.
	TeamIDs []uuid.UUID
	// MemberProjectIDs are projects where the actor is a member or has
	// created tasks.
	MemberProjectIDs []uuid.UUID
	// OwnedClientIDs are clients the actor created or account-manages.
	OwnedClientIDs []uuid.UUID
	// LinkedClientID is set for client-portal users only: the client
	// account the actor represents.
	LinkedClientID *uuid.UUID
	// DepartmentKinds are the resource kinds of the actor's business
	// function, consulted by the department scope.
	DepartmentKinds []ResourceKind
}

// Row carries the authorization-relevant attributes of a tenant-owned
// record. The persistence layer maps its models onto this shape before
// asking for a decision; the engine never sees full business entities.
type Row struct {
	ID             uuid.UUID
	Kind           ResourceKind
	OrganizationID uuid.UUID

	// Ownership signals consumed by scope resolution. All optional.
	AssigneeID  *uuid.UUID
	CreatedByID *uuid.UUID
	ProjectID   *uuid.UUID
	ClientID    *uuid.UUID
	TeamID      *uuid.UUID
}

// RoleGrant is the engine's view of one role held by the actor: the stored
// role configuration flattened to what decisions need.
type RoleGrant struct {
	Name   string
	Level  int
	Scope  Scope
	Matrix Matrix
}
