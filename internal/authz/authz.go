// Package authz implements the role gate every mutating operation passes
// through. It is pure: callers resolve the actor and the target first.
package authz

import (
	"fmt"
	"slices"

	"agora/internal/models"
)

// Require checks that actor is authenticated and ranks at least min.
func Require(actor *models.Actor, min models.Role) error {
	if actor == nil || actor.ID == 0 {
		return models.NewUnauthenticatedError("Login required")
	}
	if !actor.Role.AtLeast(min) {
		return models.NewForbiddenError(fmt.Sprintf("Requires %s role or higher", min))
	}
	return nil
}

// RequireWrite is Require for write paths: a blocked actor is always
// forbidden, even when min is blocked.
func RequireWrite(actor *models.Actor, min models.Role) error {
	if actor == nil || actor.ID == 0 {
		return models.NewUnauthenticatedError("Login required")
	}
	if actor.Role == models.RoleBlocked || !actor.Role.Valid() {
		return models.NewForbiddenError("Your account is blocked")
	}
	return Require(actor, min)
}

// CanModerate reports whether actor may act on other users' content.
func CanModerate(actor *models.Actor) bool {
	return actor != nil && actor.Role.IsModerator()
}

// RequireOwnerOrModerator allows the owner of a resource, or an admin or
// developer, to mutate it.
func RequireOwnerOrModerator(actor *models.Actor, ownerID uint) error {
	if err := RequireWrite(actor, models.RoleNormal); err != nil {
		return err
	}
	if actor.ID == ownerID || CanModerate(actor) {
		return nil
	}
	return models.NewForbiddenError("You can only modify your own content")
}

// AssignableRoles lists the roles actor may grant to others.
func AssignableRoles(actor *models.Actor) []models.Role {
	if actor == nil {
		return nil
	}
	switch actor.Role {
	case models.RoleDeveloper:
		return []models.Role{models.RoleBlocked, models.RoleNormal, models.RoleGuide, models.RoleAdmin}
	case models.RoleAdmin:
		return []models.Role{models.RoleBlocked, models.RoleNormal, models.RoleGuide}
	default:
		return nil
	}
}

// RequireRoleChange validates that actor may move target from its current
// role to newRole.
func RequireRoleChange(actor *models.Actor, target *models.User, newRole models.Role) error {
	if err := RequireWrite(actor, models.RoleAdmin); err != nil {
		return err
	}
	if !newRole.Valid() {
		return models.NewValidationError("Invalid role")
	}
	if target.ID == actor.ID {
		return models.NewForbiddenError("You cannot change your own role")
	}
	if target.Role.Rank() >= actor.Role.Rank() {
		return models.NewForbiddenError("You cannot change the role of a user at or above your rank")
	}
	if !slices.Contains(AssignableRoles(actor), newRole) {
		return models.NewForbiddenError(fmt.Sprintf("You cannot assign the %s role", newRole))
	}
	return nil
}
