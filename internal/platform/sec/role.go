// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an identity.
type UserRole string

const (
	// Unrestricted access, including every capability regardless of the
	// stored permission map. Only ever assigned by another superadmin or
	// bootstrapped through the federated flow.
	RoleSuperadmin UserRole = "superadmin"

	// Can approve registrations, edit permission maps, and reach the admin pages
	RoleAdmin UserRole = "admin"

	// Default role for approved members; reach is defined by the permission map
	RoleViewer UserRole = "viewer"
)

// IsValid reports whether the string value is one of the defined roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleViewer:
		return true
	}
	return false
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleSuperadmin:
		return 30
	case RoleAdmin:
		return 20
	case RoleViewer:
		return 10
	default:
		return 0
	}
}
