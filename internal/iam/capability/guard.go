// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package capability

// # Route Guard
//
// The guard is the single decision engine for "may this session reach this
// view". The browser client evaluates the same table against the snapshot
// returned by /auth/me; the server enforces it again on API routes, so a
// client bug can never widen access.

// State is the authentication state of a session as seen by the guard.
type State int

const (
	// StateUnknown means the auth status has not been resolved yet.
	// The client renders nothing until it settles.
	StateUnknown State = iota

	// StateAnonymous means no authenticated identity.
	StateAnonymous

	// StatePending means the identity authenticated but has not been
	// approved by an administrator.
	StatePending

	// StateActive means the identity is authenticated and approved.
	StateActive
)

// String returns the wire name of the state, as reported by /auth/me.
func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// StateOf derives the guard state from an identity snapshot.
// authenticated=false dominates; approval is only meaningful once logged in.
func StateOf(authenticated, approved bool) State {
	if !authenticated {
		return StateAnonymous
	}
	if !approved {
		return StatePending
	}
	return StateActive
}

// Outcome is the guard's decision for one navigation attempt.
type Outcome int

const (
	// OutcomeWait: state is still UNKNOWN; render nothing.
	OutcomeWait Outcome = iota

	// OutcomeAllow: the view may be rendered.
	OutcomeAllow

	// OutcomeRedirect: navigate to Verdict.Redirect instead.
	OutcomeRedirect
)

// Well-known client routes the guard redirects to.
const (
	RouteLogin    = "/login"
	RouteWaiting  = "/waiting"
	RouteNoAccess = "/no-access"
)

// Waiting-page and denial messages surfaced to the user.
const (
	MessagePending      = "Your account is awaiting administrator approval"
	MessageUnprivileged = "Your account is approved but no pages have been enabled for it yet"
	MessageDenied       = "You do not have access to this page. Contact your administrator if you believe this is an error."
)

// Verdict is the guard's full answer for one navigation attempt.
type Verdict struct {
	Outcome  Outcome `json:"outcome"`
	Redirect string  `json:"redirect,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// Access is the resolved session snapshot the guard consumes: the state
// machine input plus the effective capability set from [Resolve].
type Access struct {
	State      State
	Effective  Set
	Superadmin bool
}

// priorityOrder is the fixed order used when an already-active identity
// lands on a public route and must be sent to "its" first page.
var priorityOrder = []Key{
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

// FirstGranted returns the highest-priority granted capability.
// The second return is false when nothing is granted.
func FirstGranted(effective Set) (Key, bool) {
	for _, key := range priorityOrder {
		if effective.Has(key) {
			return key, true
		}
	}
	return "", false
}

// RouteFor maps a capability key to its client route.
func RouteFor(key Key) string {
	return "/" + string(key)
}

// Decide evaluates a navigation attempt to a protected route.
//
// required is the route's declared capability key; the zero value means
// any authenticated, approved identity may view the route.
//
// Decision table:
//
//	UNKNOWN    → wait
//	ANONYMOUS  → redirect to login
//	PENDING    → redirect to waiting page
//	ACTIVE     → allow if no key required, superadmin, or effective[key];
//	             otherwise redirect to the no-access page
func Decide(access Access, required Key) Verdict {
	switch access.State {
	case StateUnknown:
		return Verdict{Outcome: OutcomeWait}

	case StateAnonymous:
		return Verdict{Outcome: OutcomeRedirect, Redirect: RouteLogin}

	case StatePending:
		return Verdict{Outcome: OutcomeRedirect, Redirect: RouteWaiting, Message: MessagePending}
	}

	// ACTIVE from here on. An approved identity holding no capabilities is
	// parked on the waiting page with its own message.
	if !access.Superadmin && !access.Effective.AnyGranted() {
		return Verdict{Outcome: OutcomeRedirect, Redirect: RouteWaiting, Message: MessageUnprivileged}
	}

	if required == "" || access.Superadmin || access.Effective.Has(required) {
		return Verdict{Outcome: OutcomeAllow}
	}

	return Verdict{Outcome: OutcomeRedirect, Redirect: RouteNoAccess, Message: MessageDenied}
}

// DecidePublic evaluates a navigation attempt to a public route
// (login, signup, forgot/reset password). The check is inverted: a
// session that is already past authentication is pushed back into the
// application instead of being shown the form again.
func DecidePublic(access Access) Verdict {
	switch access.State {
	case StateUnknown:
		return Verdict{Outcome: OutcomeWait}

	case StatePending:
		return Verdict{Outcome: OutcomeRedirect, Redirect: RouteWaiting, Message: MessagePending}

	case StateActive:
		if first, ok := FirstGranted(access.Effective); ok {
			return Verdict{Outcome: OutcomeRedirect, Redirect: RouteFor(first)}
		}
		return Verdict{Outcome: OutcomeRedirect, Redirect: RouteWaiting, Message: MessageUnprivileged}
	}

	// Anonymous visitors see the public page.
	return Verdict{Outcome: OutcomeAllow}
}
