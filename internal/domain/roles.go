package domain

// Capability is a named permission a caller's role set must grant before a
// staff-only operation is allowed.
type Capability string

const (
	// CapabilityEventManagement gates staff-initiated gate overrides and
	// participant removal.
	CapabilityEventManagement Capability = "event.manage"
)

// RoleSet is the resolved set of role names held by one user.
type RoleSet []string

func (rs RoleSet) Contains(role string) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}
