// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

/*
Package capability implements the permission model for the portal.

Every gated page or feature is named by a capability key. An identity's
reach is the merge of a fixed baseline (pages every approved member gets),
its stored per-user permission map, and the superadmin override.

Architecture:

  - Key: A validated string naming one gated feature/page. The namespace is
    open — new pages introduce new keys without a schema migration.
  - Set: The true/false map actually enforced for a session.
  - Resolve: The single function that computes the effective [Set] from a
    role and a stored map. All enforcement paths go through it.

The resolution rules are fixed contracts: superadmin always receives the
universal set, and stored values win over the baseline on key collision.
*/
package capability

import (
	"sort"

	"github.com/bgecorp/portal/internal/platform/sec"
	"github.com/bgecorp/portal/pkg/slug"
)

// Key names one gated feature/page (e.g. "dashboard", "finance").
type Key string

// Built-in capability keys. The namespace is open; these are the keys the
// portal ships pages for.
const (
	KeyDashboard Key = "dashboard"
	KeyHR        Key = "hr"
	KeyInventory Key = "inventory"
	KeyProjects  Key = "projects"
	KeyFinance   Key = "finance"
	KeyDirectory Key = "directory"
	KeyAdmin     Key = "admin"
	KeySettings  Key = "settings"
	KeyHelp      Key = "help"
)

// builtins is the closed list of keys the portal currently ships pages for.
// Universe() derives the superadmin set from it.
var builtins = []Key{
	KeyDashboard,
	KeyHR,
	KeyInventory,
	KeyProjects,
	KeyFinance,
	KeyDirectory,
	KeyAdmin,
	KeySettings,
	KeyHelp,
}

// Normalize converts an arbitrary string into canonical key form
// (lowercase ASCII, hyphen-separated). Admin input goes through this
// before storage so "Expense Reports" and "expense-reports" cannot
// coexist as distinct keys.
func Normalize(raw string) Key {
	return Key(slug.From(raw))
}

// # Capability Sets

// Set is a mapping from capability key to grant flag.
//
// A missing key and an explicit false entry are equivalent for
// enforcement; explicit false entries exist so an admin can revoke a
// baseline capability for a specific identity.
type Set map[Key]bool

// Has reports whether the key is granted.
func (s Set) Has(key Key) bool {
	return s[key]
}

// AnyGranted reports whether at least one capability is granted.
// An approved identity with none granted is parked on the waiting page.
func (s Set) AnyGranted() bool {
	for _, granted := range s {
		if granted {
			return true
		}
	}
	return false
}

// Granted returns the granted keys in lexical order.
func (s Set) Granted() []Key {
	keys := make([]Key, 0, len(s))
	for key, granted := range s {
		if granted {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for key, granted := range s {
		out[key] = granted
	}
	return out
}

// # Fixed Contracts

// Baseline returns the capabilities every approved identity holds
// regardless of role, unless explicitly revoked in its stored map.
func Baseline() Set {
	return Set{
		KeySettings: true,
		KeyHelp:     true,
	}
}

// Universe returns every built-in capability key set to true.
// This is the effective set of a superadmin.
func Universe() Set {
	out := make(Set, len(builtins))
	for _, key := range builtins {
		out[key] = true
	}
	return out
}

// DefaultForRole returns the capability map seeded when an administrator
// approves a pending identity with the given role.
func DefaultForRole(role sec.UserRole) Set {
	seeded := Baseline()

	switch role {
	case sec.RoleViewer:
		seeded[KeyDashboard] = true
	case sec.RoleAdmin:
		seeded[KeyDashboard] = true
		seeded[KeyHR] = true
		seeded[KeyInventory] = true
		seeded[KeyProjects] = true
		seeded[KeyFinance] = true
		seeded[KeyDirectory] = true
		seeded[KeyAdmin] = true
	case sec.RoleSuperadmin:
		// Stored map is irrelevant for superadmins; seed the baseline only.
	}

	return seeded
}

// # Resolution

// Resolve computes the effective capability set for an identity.
//
// Rules (fixed contracts):
//  1. Superadmin gets the universal set. The stored map is ignored.
//  2. Everyone else gets Baseline() merged with the stored map, with
//     stored values taking precedence on key collision.
func Resolve(role sec.UserRole, stored Set) Set {
	if role == sec.RoleSuperadmin {
		return Universe()
	}

	effective := Baseline()
	for key, granted := range stored {
		effective[key] = granted
	}
	return effective
}
