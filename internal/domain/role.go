package domain

import "fmt"

// UserRole enumerates the platform's user roles.
type UserRole string

const (
	RoleStudent       UserRole = "STUDENT"
	RoleInstructor    UserRole = "INSTRUCTOR"
	RoleStaff         UserRole = "STAFF"
	RoleAdministrator UserRole = "ADMINISTRATOR"
)

// roleLevels orders roles by permission level. Higher grants more access.
var roleLevels = map[UserRole]int{
	RoleStudent:       1,
	RoleInstructor:    2,
	RoleStaff:         3,
	RoleAdministrator: 4,
}

var roleDisplayNames = map[UserRole]string{
	RoleStudent:       "Student",
	RoleInstructor:    "Instructor",
	RoleStaff:         "Staff",
	RoleAdministrator: "Administrator",
}

var roleDescriptions = map[UserRole]string{
	RoleStudent:       "Basic user with access to personal academic data",
	RoleInstructor:    "Educator with class management and grading capabilities",
	RoleStaff:         "Administrative user with system-wide access and management",
	RoleAdministrator: "Super user with complete system access",
}

// AllRoles lists every role in ascending permission order.
func AllRoles() []UserRole {
	return []UserRole{RoleStudent, RoleInstructor, RoleStaff, RoleAdministrator}
}

// ParseRole maps a string onto a known role.
func ParseRole(s string) (UserRole, error) {
	role := UserRole(s)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the numeric permission level (higher = more permissions).
func (r UserRole) Level() int {
	return roleLevels[r]
}

// DisplayName returns the human-readable name of the role.
func (r UserRole) DisplayName() string {
	return roleDisplayNames[r]
}

// Description returns the role's capability summary.
func (r UserRole) Description() string {
	return roleDescriptions[r]
}

// HasPermissionFor reports whether this role meets or exceeds the required level.
func (r UserRole) HasPermissionFor(required UserRole) bool {
	return r.Level() >= required.Level()
}

// CanAccess reports whether this role may access resources owned by target.
func (r UserRole) CanAccess(target UserRole) bool {
	return r.Level() >= target.Level()
}
