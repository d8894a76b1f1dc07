package utils

import "strings"

// Roles a console user can hold.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleCashier = "cashier"
)

// ValidUserRoles lists the roles a console user can hold.
var ValidUserRoles = map[string]bool{
	RoleAdmin:   true,
	RoleManager: true,
	RoleStaff:   true,
	RoleCashier: true,
}

// UserRoles returns the valid roles in display order.
func UserRoles() []string {
	return []string{RoleAdmin, RoleManager, RoleStaff, RoleCashier}
}

// ValidateAndNormalizeRole validates and normalizes a role string.
// Returns the normalized role (lowercase) and a boolean indicating if it's valid.
func ValidateAndNormalizeRole(role string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(role))
	return normalized, ValidUserRoles[normalized]
}
