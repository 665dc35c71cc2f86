package output

import (
	"context"

	"vaops/internal/domain"
)

// RoleService resolves the current role set of a user. Owned by the
// authentication component; consumed here to build callerRoles for staff
// operations.
type RoleService interface {
	GetUserRoles(ctx context.Context, userID string) (domain.RoleSet, error)
}

// AuthorizationGuard owns the role vocabulary and decides which role sets
// grant which capabilities.
type AuthorizationGuard interface {
	HasEventManagementCapability(roles domain.RoleSet) bool
}
