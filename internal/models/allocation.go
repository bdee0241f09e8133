package models

// Role identifies one of the three assistant assignment positions per slot.
type Role string

const (
	RoleFirst  Role = "FIRST"
	RoleSecond Role = "SECOND"
	RoleThird  Role = "THIRD"
)

// Roles returns the fixed allocation order.
func Roles() [3]Role {
	return [3]Role{RoleFirst, RoleSecond, RoleThird}
}

// Assignment is the per-role result of allocating one slot. Empty values
// mean the role is unfilled.
type Assignment struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Third  string `json:"third"`
}

// Get returns the value recorded for a role.
func (a Assignment) Get(role Role) string {
	switch role {
	case RoleFirst:
		return a.First
	case RoleSecond:
		return a.Second
	case RoleThird:
		return a.Third
	default:
		return ""
	}
}

// Set records a value for a role.
func (a *Assignment) Set(role Role, name string) {
	switch role {
	case RoleFirst:
		a.First = name
	case RoleSecond:
		a.Second = name
	case RoleThird:
		a.Third = name
	}
}

// Used reports whether a name already occupies any role in this slot.
func (a Assignment) Used(name string) bool {
	return name != "" && (a.First == name || a.Second == name || a.Third == name)
}

// AvailabilityState is the point-in-time status of an assistant.
type AvailabilityState string

const (
	StateFree    AvailabilityState = "FREE"
	StateBusy    AvailabilityState = "BUSY"
	StateBlocked AvailabilityState = "BLOCKED"
)

// AssistantStatus is one row of the live status board.
type AssistantStatus struct {
	Name       string            `json:"name"`
	Department string            `json:"department"`
	State      AvailabilityState `json:"state"`
	Reason     string            `json:"reason,omitempty"`
}

// Availability is the outcome of a window availability check.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
