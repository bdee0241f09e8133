package models

// SharedDepartment is the fallback department for profiles that cannot be
// resolved to a configured department.
const SharedDepartment = "SHARED"

// TimeOverride routes a role to a fixed candidate list inside an
// hour-of-day window. Windows are half-open: start <= hour < end.
type TimeOverride struct {
	StartHour  float64  `mapstructure:"start_hour" json:"start_hour"`
	EndHour    float64  `mapstructure:"end_hour" json:"end_hour"`
	Candidates []string `mapstructure:"candidates" json:"candidates"`
}

// RoleRule is the layered candidate policy for one role. Tiers are
// evaluated strictly in declaration order: time overrides, then doctor
// overrides, then first-assistant overrides, then the default list. The
// first tier producing a non-empty list wins.
type RoleRule struct {
	TimeOverrides           []TimeOverride      `mapstructure:"time_overrides" json:"time_overrides,omitempty"`
	DoctorOverrides         map[string][]string `mapstructure:"doctor_overrides" json:"doctor_overrides,omitempty"`
	FirstAssistantOverrides map[string][]string `mapstructure:"first_assistant_overrides" json:"first_assistant_overrides,omitempty"`
	Default                 []string            `mapstructure:"default" json:"default,omitempty"`
}

// DepartmentRules carries the rosters and per-role rules for one department.
type DepartmentRules struct {
	Doctors    []string            `mapstructure:"doctors" json:"doctors,omitempty"`
	Assistants []string            `mapstructure:"assistants" json:"assistants,omitempty"`
	Roles      map[string]RoleRule `mapstructure:"roles" json:"roles,omitempty"`
}

// AllocationPolicy holds the global allocation flags.
type AllocationPolicy struct {
	CrossDepartment bool `mapstructure:"cross_department" json:"cross_department"`
	LoadBalance     bool `mapstructure:"load_balance" json:"load_balance"`
	// UseRoleFlags is parsed for forward compatibility but currently
	// informational only.
	UseRoleFlags bool `mapstructure:"use_role_flags" json:"use_role_flags"`
}

// RuleSet is the full declarative department rules document. A missing
// document degrades to the zero value, never to an error.
type RuleSet struct {
	Departments map[string]DepartmentRules `mapstructure:"departments" json:"departments,omitempty"`
	Policy      AllocationPolicy           `mapstructure:"policy" json:"policy"`
}

// RuleFor returns the role rule configured for a department, or an empty
// rule when the department or role has no entry.
func (rs RuleSet) RuleFor(department, role string) RoleRule {
	dept, ok := rs.Departments[department]
	if !ok {
		return RoleRule{}
	}
	return dept.Roles[role]
}
