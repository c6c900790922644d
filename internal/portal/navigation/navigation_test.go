// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bgecorp/portal/internal/iam/capability"
	"github.com/bgecorp/portal/internal/portal/navigation"
)

/*
TestFilter_ByCapability verifies the menu only contains granted entries, in
catalog order.
*/
func TestFilter_ByCapability(t *testing.T) {
	access := capability.Access{
		State: capability.StateActive,
		Effective: capability.Set{
			capability.KeyProjects: true,
			capability.KeyHelp:     true,
			capability.KeySettings: true,
		},
	}

	items := navigation.Filter(access)

	keys := make([]capability.Key, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}
	assert.Equal(t, []capability.Key{
		capability.KeyProjects,
		capability.KeySettings,
		capability.KeyHelp,
	}, keys)
}

/*
TestFilter_Superadmin verifies a superadmin sees the whole catalog.
*/
func TestFilter_Superadmin(t *testing.T) {
	access := capability.Access{
		State:      capability.StateActive,
		Effective:  capability.Set{},
		Superadmin: true,
	}

	items := navigation.Filter(access)

	assert.Len(t, items, len(navigation.Catalog()))
}

/*
TestFilter_NonActiveStatesGetNothing verifies pending and anonymous sessions
receive an empty menu.
*/
func TestFilter_NonActiveStatesGetNothing(t *testing.T) {
	for _, state := range []capability.State{
		capability.StateUnknown,
		capability.StateAnonymous,
		capability.StatePending,
	} {
		access := capability.Access{
			State:     state,
			Effective: capability.Universe(),
		}
		assert.Empty(t, navigation.Filter(access), "state %s", state)
	}
}

/*
TestLanding_FirstGrantedInPriorityOrder verifies the post-login landing path.
*/
func TestLanding_FirstGrantedInPriorityOrder(t *testing.T) {
	access := capability.Access{
		State: capability.StateActive,
		Effective: capability.Set{
			capability.KeyFinance:  true,
			capability.KeySettings: true,
		},
	}

	assert.Equal(t, "/finance", navigation.Landing(access))
}

/*
TestLanding_UnprivilegedParksOnWaiting verifies an approved account with no
grants lands on the waiting page.
*/
func TestLanding_UnprivilegedParksOnWaiting(t *testing.T) {
	access := capability.Access{
		State:     capability.StateActive,
		Effective: capability.Set{},
	}

	assert.Equal(t, capability.RouteWaiting, navigation.Landing(access))
}
