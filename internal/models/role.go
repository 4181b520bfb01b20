package models

import "strings"

// Role is a user's privilege level. Roles are totally ordered by Rank.
type Role string

const (
	// RoleBlocked is denied every write operation regardless of other checks.
	RoleBlocked Role = "blocked"
	// RoleNormal is the default role for new accounts.
	RoleNormal Role = "normal"
	// RoleGuide may post in guide-only categories.
	RoleGuide Role = "guide"
	// RoleAdmin moderates content and manages roles below admin.
	RoleAdmin Role = "admin"
	// RoleDeveloper is the highest role and may promote users to admin.
	RoleDeveloper Role = "developer"
)

var roleRanks = map[Role]int{
	RoleBlocked:   0,
	RoleNormal:    1,
	RoleGuide:     2,
	RoleAdmin:     3,
	RoleDeveloper: 4,
}

// AllRoles lists every role from lowest to highest rank.
func AllRoles() []Role {
	return []Role{RoleBlocked, RoleNormal, RoleGuide, RoleAdmin, RoleDeveloper}
}

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := roleRanks[r]
	return r, ok
}

// Rank returns the numeric rank of the role. Unknown roles rank as blocked.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// AtLeast reports whether r ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

// IsModerator reports whether r may moderate other users' content.
func (r Role) IsModerator() bool {
	return r == RoleAdmin || r == RoleDeveloper
}

func (r Role) String() string {
	return string(r)
}
