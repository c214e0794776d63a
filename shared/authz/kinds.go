package authz

import "fmt"

// ResourceKind identifies a tenant-owned resource category that
// permissions can be granted on.
type ResourceKind string

const (
	KindOrganizations ResourceKind = "organizations"
	KindUsers         ResourceKind = "users"
	KindRoles         ResourceKind = "roles"
	KindProjects      ResourceKind = "projects"
	KindTasks         ResourceKind = "tasks"
	KindClients       ResourceKind = "clients"
	KindTeams         ResourceKind = "teams"
	KindFinances      ResourceKind = "finances"
	KindReports       ResourceKind = "reports"
	KindSettings      ResourceKind = "settings"
)

// Action is a verb a role may be allowed to perform on a resource kind.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
)

var resourceKinds = map[ResourceKind]bool{
	KindOrganizations: true,
	KindUsers:         true,
	KindRoles:         true,
	KindProjects:      true,
	KindTasks:         true,
	KindClients:       true,
	KindTeams:         true,
	KindFinances:      true,
	KindReports:       true,
	KindSettings:      true,
}

var actions = map[Action]bool{
	ActionCreate: true,
	ActionRead:   true,
	ActionUpdate: true,
	ActionDelete: true,
	ActionExport: true,
}

// AllResourceKinds returns every known resource kind.
func AllResourceKinds() []ResourceKind {
	return []ResourceKind{
		KindOrganizations, KindUsers, KindRoles, KindProjects, KindTasks,
		KindClients, KindTeams, KindFinances, KindReports, KindSettings,
	}
}

// AllActions returns every known action.
func AllActions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport}
}

// ParseResourceKind validates a resource kind slug.
func ParseResourceKind(s string) (ResourceKind, error) {
	kind := ResourceKind(s)
	if !resourceKinds[kind] {
		return "", fmt.Errorf("unknown resource kind: %q", s)
	}
	return kind, nil
}

// ParseAction validates an action slug.
func ParseAction(s string) (Action, error) {
	action := Action(s)
	if !actions[action] {
		return "", fmt.Errorf("unknown action: %q", s)
	}
	return action, nil
}
