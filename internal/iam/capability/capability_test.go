// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package capability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bgecorp/portal/internal/iam/capability"
	"github.com/bgecorp/portal/internal/platform/sec"
)

/*
TestResolve_SuperadminGetsUniverse verifies the superadmin override: the
stored map is ignored entirely, even when it tries to revoke something.
*/
func TestResolve_SuperadminGetsUniverse(t *testing.T) {
	stored := capability.Set{
		capability.KeyFinance: false,
		capability.KeyHelp:    false,
	}

	effective := capability.Resolve(sec.RoleSuperadmin, stored)

	assert.Equal(t, capability.Universe(), effective)
	assert.True(t, effective.Has(capability.KeyFinance))
}

/*
TestResolve_StoredWinsOverBaseline verifies precedence on key collision: an
explicit false in the stored map revokes a baseline grant.
*/
func TestResolve_StoredWinsOverBaseline(t *testing.T) {
	stored := capability.Set{
		capability.KeySettings: false,
		capability.KeyFinance:  true,
	}

	effective := capability.Resolve(sec.RoleViewer, stored)

	assert.False(t, effective.Has(capability.KeySettings), "stored revocation must beat the baseline")
	assert.True(t, effective.Has(capability.KeyHelp), "untouched baseline grant survives the merge")
	assert.True(t, effective.Has(capability.KeyFinance))
}

/*
TestResolve_EmptyStoredMapYieldsBaseline verifies a freshly approved account
with no stored grants still reaches the baseline pages.
*/
func TestResolve_EmptyStoredMapYieldsBaseline(t *testing.T) {
	effective := capability.Resolve(sec.RoleViewer, capability.Set{})

	assert.Equal(t, capability.Baseline(), effective)
}

/*
TestResolve_AdminIsNotSuperadmin verifies plain admins go through the same
merge as everyone else and hold nothing beyond baseline plus stored grants.
*/
func TestResolve_AdminIsNotSuperadmin(t *testing.T) {
	effective := capability.Resolve(sec.RoleAdmin, capability.Set{capability.KeyAdmin: true})

	assert.True(t, effective.Has(capability.KeyAdmin))
	assert.False(t, effective.Has(capability.KeyFinance))
}

/*
TestDefaultForRole verifies the maps seeded at approval time.
*/
func TestDefaultForRole(t *testing.T) {
	viewer := capability.DefaultForRole(sec.RoleViewer)
	assert.True(t, viewer.Has(capability.KeyDashboard))
	assert.True(t, viewer.Has(capability.KeySettings))
	assert.True(t, viewer.Has(capability.KeyHelp))
	assert.False(t, viewer.Has(capability.KeyAdmin))

	admin := capability.DefaultForRole(sec.RoleAdmin)
	for _, key := range capability.Universe().Granted() {
		assert.True(t, admin.Has(key), "admin default should grant %q", key)
	}

	// Superadmins resolve to the universe regardless, so only the baseline
	// is persisted for them.
	superadmin := capability.DefaultForRole(sec.RoleSuperadmin)
	assert.Equal(t, capability.Baseline(), superadmin)
}

/*
TestNormalize verifies arbitrary admin input collapses to canonical key form.
*/
func TestNormalize(t *testing.T) {
	assert.Equal(t, capability.Key("expense-reports"), capability.Normalize("Expense Reports"))
	assert.Equal(t, capability.Key("hr"), capability.Normalize("HR"))
	assert.Equal(t, capability.Key(""), capability.Normalize("  ***  "))
}

/*
TestSet_Granted verifies only true entries are reported, sorted lexically.
*/
func TestSet_Granted(t *testing.T) {
	set := capability.Set{
		capability.KeyFinance:   true,
		capability.KeyDashboard: true,
		capability.KeyHR:        false,
	}

	assert.Equal(t, []capability.Key{capability.KeyDashboard, capability.KeyFinance}, set.Granted())
}

/*
TestSet_AnyGranted verifies a map holding only revocations counts as empty.
*/
func TestSet_AnyGranted(t *testing.T) {
	assert.False(t, capability.Set{}.AnyGranted())
	assert.False(t, capability.Set{capability.KeyHelp: false}.AnyGranted())
	assert.True(t, capability.Set{capability.KeyHelp: true}.AnyGranted())
}

/*
TestSet_Clone verifies mutation of the copy does not leak into the original.
*/
func TestSet_Clone(t *testing.T) {
	original := capability.Set{capability.KeyHelp: true}

	copied := original.Clone()
	copied[capability.KeyHelp] = false
	copied[capability.KeyFinance] = true

	assert.True(t, original.Has(capability.KeyHelp))
	assert.False(t, original.Has(capability.KeyFinance))
}
