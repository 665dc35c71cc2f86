// Package authz owns the role vocabulary: which role names grant which
// capabilities. The participation manager only sees the capability check.
package authz

import (
	"vaops/internal/domain"
	"vaops/internal/ports/output"
)

// roleCapabilities maps platform role names to the capabilities they grant.
var roleCapabilities = map[string][]domain.Capability{
	"admin":        {domain.CapabilityEventManagement},
	"event_staff":  {domain.CapabilityEventManagement},
	"ops_director": {domain.CapabilityEventManagement},
}

var _ output.AuthorizationGuard = (*Guard)(nil)

type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// Has reports whether any role in the set grants the capability.
func (g *Guard) Has(roles domain.RoleSet, capability domain.Capability) bool {
	for _, role := range roles {
		for _, granted := range roleCapabilities[role] {
			if granted == capability {
				return true
			}
		}
	}
	return false
}

func (g *Guard) HasEventManagementCapability(roles domain.RoleSet) bool {
	return g.Has(roles, domain.CapabilityEventManagement)
}
