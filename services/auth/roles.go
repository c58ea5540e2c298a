package auth

import (
	"companionhub/models"
	"companionhub/utils"
)

// RoleSet is the set of roles allowed to perform an operation.
type RoleSet map[models.Role]struct{}

// Roles builds a RoleSet.
func Roles(roles ...models.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// AnyRole admits every authenticated identity.
func AnyRole() RoleSet {
	return Roles(models.RoleSeeker, models.RoleCompanion, models.RoleAdmin)
}

func (s RoleSet) Contains(role models.Role) bool {
	_, ok := s[role]
	return ok
}

// Authorize fails with Unauthenticated when no identity has been resolved
// and with Forbidden when the identity's role is not in allowed.
func Authorize(identity *models.User, allowed RoleSet) error {
	if identity == nil {
		return utils.NewError(utils.KindUnauthenticated, "Authentication required.")
	}
	if !allowed.Contains(identity.Role) {
		return utils.NewError(utils.KindForbidden, "Access denied. Insufficient permissions.")
	}
	return nil
}
