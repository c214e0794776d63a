package authz

// RoleArchetype is one entry of the default role catalog shipped to every
// new organization. Organizations may edit the copies they receive; the
// catalog itself is static configuration.
type RoleArchetype struct {
	Name        string
	Description string
	Level       int
	Scope       Scope
	Matrix      Matrix
}

// DefaultRoleCatalog returns the built-in role archetypes. The slice is
// rebuilt on every call so callers can mutate their copy freely.
func DefaultRoleCatalog() []RoleArchetype {
	crud := []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
	crudExport := []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport}
	readOnly := []Action{ActionRead}

	return []RoleArchetype{
		{
			Name:        "OWNER",
			Description: "Organization owner with unrestricted access",
			Level:       LevelOwner,
			Scope:       ScopeAll,
			Matrix:      fullAccess(crudExport...),
		},
		{
			Name:        "ADMIN",
			Description: "Administrator managing users, roles and settings",
			Level:       4,
			Scope:       ScopeAll,
			Matrix: Matrix{
				KindUsers:    crud,
				KindRoles:    crud,
				KindProjects: crudExport,
				KindTasks:    crud,
				KindClients:  crud,
				KindTeams:    crud,
				KindFinances: crudExport,
				KindReports:  crudExport,
				KindSettings: {ActionRead, ActionUpdate},
			},
		},
		{
			Name:        "DIRECTOR",
			Description: "Executive oversight across the whole organization",
			Level:       4,
			Scope:       ScopeAll,
			Matrix: Matrix{
				KindUsers:    readOnly,
				KindProjects: crudExport,
				KindTasks:    crud,
				KindClients:  crud,
				KindTeams:    crud,
				KindFinances: {ActionRead, ActionExport},
				KindReports:  crudExport,
			},
		},
		{
			Name:        "SENIOR_MANAGER",
			Description: "Manages several teams and their delivery",
			Level:       3,
			Scope:       ScopeTeam,
			Matrix: Matrix{
				KindProjects: crud,
				KindTasks:    crud,
				KindClients:  {ActionRead, ActionUpdate},
				KindTeams:    {ActionRead, ActionUpdate},
				KindReports:  {ActionRead, ActionExport},
			},
		},
		{
			Name:        "MANAGER",
			Description: "Manages assigned projects end to end",
			Level:       3,
			Scope:       ScopeAssignedProjects,
			Matrix: Matrix{
				KindProjects: {ActionRead, ActionUpdate},
				KindTasks:    crud,
				KindClients:  readOnly,
				KindReports:  {ActionRead, ActionExport},
			},
		},
		{
			Name:        "TEAM_LEAD",
			Description: "Leads one team's day-to-day work",
			Level:       2,
			Scope:       ScopeTeam,
			Matrix: Matrix{
				KindProjects: {ActionRead, ActionUpdate},
				KindTasks:    crud,
				KindTeams:    readOnly,
				KindReports:  readOnly,
			},
		},
		{
			Name:        "PROJECT_MANAGER",
			Description: "Coordinates assigned projects and their tasks",
			Level:       2,
			Scope:       ScopeAssignedProjects,
			Matrix: Matrix{
				KindProjects: {ActionRead, ActionUpdate},
				KindTasks:    crud,
				KindClients:  readOnly,
				KindReports:  readOnly,
			},
		},
		{
			Name:        "ACCOUNT_MANAGER",
			Description: "Owns client relationships and their projects",
			Level:       2,
			Scope:       ScopeAssignedClients,
			Matrix: Matrix{
				KindClients:  crud,
				KindProjects: {ActionRead, ActionUpdate},
				KindTasks:    {ActionCreate, ActionRead, ActionUpdate},
				KindFinances: readOnly,
			},
		},
		{
			Name:        "SPECIALIST",
			Description: "Individual contributor on assigned work",
			Level:       1,
			Scope:       ScopeAssigned,
			Matrix: Matrix{
				KindTasks:    {ActionCreate, ActionRead, ActionUpdate},
				KindProjects: readOnly,
			},
		},
		{
			Name:        "DESIGNER",
			Description: "Design contributor on assigned work",
			Level:       1,
			Scope:       ScopeAssigned,
			Matrix: Matrix{
				KindTasks:    {ActionCreate, ActionRead, ActionUpdate},
				KindProjects: readOnly,
			},
		},
		{
			Name:        "DEVELOPER",
			Description: "Engineering contributor on assigned work",
			Level:       1,
			Scope:       ScopeAssigned,
			Matrix: Matrix{
				KindTasks:    {ActionCreate, ActionRead, ActionUpdate},
				KindProjects: readOnly,
			},
		},
		{
			Name:        "COPYWRITER",
			Description: "Content contributor on assigned work",
			Level:       1,
			Scope:       ScopeAssigned,
			Matrix: Matrix{
				KindTasks:    {ActionCreate, ActionRead, ActionUpdate},
				KindProjects: readOnly,
			},
		},
		{
			Name:        "ANALYST",
			Description: "Reporting and analysis on assigned projects",
			Level:       1,
			Scope:       ScopeAssignedProjects,
			Matrix: Matrix{
				KindProjects: readOnly,
				KindTasks:    readOnly,
				KindReports:  {ActionCreate, ActionRead, ActionExport},
			},
		},
		{
			Name:        "FINANCE",
			Description: "Finance function: invoices and financial reports",
			Level:       2,
			Scope:       ScopeAll,
			Matrix: Matrix{
				KindFinances: crudExport,
				KindClients:  readOnly,
				KindProjects: readOnly,
				KindReports:  {ActionRead, ActionExport},
			},
		},
		{
			Name:        "HR",
			Description: "People function: user records and teams",
			Level:       2,
			Scope:       ScopeAll,
			Matrix: Matrix{
				KindUsers: {ActionCreate, ActionRead, ActionUpdate},
				KindTeams: {ActionRead, ActionUpdate},
			},
		},
		{
			Name:        "SALES",
			Description: "Sales function: owns prospective client accounts",
			Level:       1,
			Scope:       ScopeAssignedClients,
			Matrix: Matrix{
				KindClients:  crud,
				KindProjects: readOnly,
				KindReports:  readOnly,
			},
		},
		{
			Name:        "CONTRACTOR",
			Description: "External contributor limited to assigned tasks",
			Level:       0,
			Scope:       ScopeAssigned,
			Matrix: Matrix{
				KindTasks: {ActionRead, ActionUpdate},
			},
		},
		{
			Name:        "INTERN",
			Description: "Supervised contributor with read access to assigned work",
			Level:       0,
			Scope:       ScopeAssigned,
			Matrix: Matrix{
				KindTasks:    readOnly,
				KindProjects: readOnly,
			},
		},
		{
			Name:        "CLIENT",
			Description: "Client-portal user seeing only their own account",
			Level:       0,
			Scope:       ScopeOwnProjects,
			Matrix: Matrix{
				KindProjects: readOnly,
				KindTasks:    readOnly,
				KindFinances: readOnly,
			},
		},
		{
			Name:        "VIEWER",
			Description: "Read-only visibility across the organization",
			Level:       0,
			Scope:       ScopeAll,
			Matrix: Matrix{
				KindProjects: readOnly,
				KindTasks:    readOnly,
				KindClients:  readOnly,
				KindTeams:    readOnly,
				KindReports:  readOnly,
			},
		},
	}
}

// FindArchetype looks up a catalog entry by name.
func FindArchetype(name string) (RoleArchetype, bool) {
	for _, archetype := range DefaultRoleCatalog() {
		if archetype.Name == name {
			return archetype, true
		}
	}
	return RoleArchetype{}, false
}
