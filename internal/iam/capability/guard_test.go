// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package capability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bgecorp/portal/internal/iam/capability"
)

/*
TestStateOf verifies the state derivation from an identity snapshot.
Approval only matters once authenticated.
*/
func TestStateOf(t *testing.T) {
	assert.Equal(t, capability.StateAnonymous, capability.StateOf(false, false))
	assert.Equal(t, capability.StateAnonymous, capability.StateOf(false, true))
	assert.Equal(t, capability.StatePending, capability.StateOf(true, false))
	assert.Equal(t, capability.StateActive, capability.StateOf(true, true))
}

/*
TestState_String verifies the wire names reported by /auth/me.
*/
func TestState_String(t *testing.T) {
	assert.Equal(t, "unknown", capability.StateUnknown.String())
	assert.Equal(t, "anonymous", capability.StateAnonymous.String())
	assert.Equal(t, "pending", capability.StatePending.String())
	assert.Equal(t, "active", capability.StateActive.String())
}

/*
TestDecide_DecisionTable walks the guard's full decision table for a route
requiring the "projects" capability.
*/
func TestDecide_DecisionTable(t *testing.T) {
	testCases := []struct {
		name     string
		access   capability.Access
		expected capability.Verdict
	}{
		{
			name:     "unresolved session waits",
			access:   capability.Access{State: capability.StateUnknown},
			expected: capability.Verdict{Outcome: capability.OutcomeWait},
		},
		{
			name:   "anonymous is sent to login",
			access: capability.Access{State: capability.StateAnonymous},
			expected: capability.Verdict{
				Outcome:  capability.OutcomeRedirect,
				Redirect: capability.RouteLogin,
			},
		},
		{
			name:   "pending parks on the waiting page",
			access: capability.Access{State: capability.StatePending},
			expected: capability.Verdict{
				Outcome:  capability.OutcomeRedirect,
				Redirect: capability.RouteWaiting,
				Message:  capability.MessagePending,
			},
		},
		{
			name: "active without the capability is denied",
			access: capability.Access{
				State:     capability.StateActive,
				Effective: capability.Set{capability.KeyDashboard: true},
			},
			expected: capability.Verdict{
				Outcome:  capability.OutcomeRedirect,
				Redirect: capability.RouteNoAccess,
				Message:  capability.MessageDenied,
			},
		},
		{
			name: "active with the capability is allowed",
			access: capability.Access{
				State:     capability.StateActive,
				Effective: capability.Set{capability.KeyProjects: true},
			},
			expected: capability.Verdict{Outcome: capability.OutcomeAllow},
		},
		{
			name: "superadmin is allowed without an explicit grant",
			access: capability.Access{
				State:      capability.StateActive,
				Effective:  capability.Universe(),
				Superadmin: true,
			},
			expected: capability.Verdict{Outcome: capability.OutcomeAllow},
		},
		{
			name: "active with nothing granted parks on the waiting page",
			access: capability.Access{
				State:     capability.StateActive,
				Effective: capability.Set{capability.KeyHelp: false},
			},
			expected: capability.Verdict{
				Outcome:  capability.OutcomeRedirect,
				Redirect: capability.RouteWaiting,
				Message:  capability.MessageUnprivileged,
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			verdict := capability.Decide(testCase.access, capability.KeyProjects)
			assert.Equal(t, testCase.expected, verdict)
		})
	}
}

/*
TestDecide_NoRequiredKey verifies a route with no declared capability admits
any active identity with at least one grant.
*/
func TestDecide_NoRequiredKey(t *testing.T) {
	access := capability.Access{
		State:     capability.StateActive,
		Effective: capability.Set{capability.KeyHelp: true},
	}

	verdict := capability.Decide(access, "")

	assert.Equal(t, capability.OutcomeAllow, verdict.Outcome)
}

/*
TestDecidePublic verifies the inverted check on login/signup style routes:
sessions already past authentication are pushed back into the application.
*/
func TestDecidePublic(t *testing.T) {
	anonymous := capability.DecidePublic(capability.Access{State: capability.StateAnonymous})
	assert.Equal(t, capability.OutcomeAllow, anonymous.Outcome)

	pending := capability.DecidePublic(capability.Access{State: capability.StatePending})
	assert.Equal(t, capability.OutcomeRedirect, pending.Outcome)
	assert.Equal(t, capability.RouteWaiting, pending.Redirect)

	active := capability.DecidePublic(capability.Access{
		State: capability.StateActive,
		Effective: capability.Set{
			capability.KeyFinance:   true,
			capability.KeyDirectory: true,
		},
	})
	assert.Equal(t, capability.OutcomeRedirect, active.Outcome)
	assert.Equal(t, "/finance", active.Redirect, "highest-priority granted page wins")

	unprivileged := capability.DecidePublic(capability.Access{
		State:     capability.StateActive,
		Effective: capability.Set{},
	})
	assert.Equal(t, capability.RouteWaiting, unprivileged.Redirect)
	assert.Equal(t, capability.MessageUnprivileged, unprivileged.Message)
}

/*
TestFirstGranted verifies priority ordering is fixed, not map ordering.
*/
func TestFirstGranted(t *testing.T) {
	key, ok := capability.FirstGranted(capability.Set{
		capability.KeyHelp:      true,
		capability.KeyInventory: true,
		capability.KeyAdmin:     true,
	})

	assert.True(t, ok)
	assert.Equal(t, capability.KeyInventory, key)

	_, ok = capability.FirstGranted(capability.Set{capability.KeyHelp: false})
	assert.False(t, ok)
}
