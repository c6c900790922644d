// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a remembered session remains valid.
	// Long-lived (30 days) to provide a good user experience.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// ShortSessionTTL is the duration a non-remembered session remains valid.
	// Roughly one working day; the cookie itself is session-scoped so the
	// browser drops it on close.
	ShortSessionTTL = 12 * time.Hour

	// RefreshTokenLength is the byte length of the random secure token.
	RefreshTokenLength = 32

	// ResetTicketTTL is the duration a password reset ticket remains valid.
	// Short-lived (1 hour) for security.
	ResetTicketTTL = 1 * time.Hour

	// ResetTicketLength is the byte length of the random password reset token.
	ResetTicketLength = 32

	// OIDCStateTTL bounds how long a federated login round trip may take.
	OIDCStateTTL = 10 * time.Minute

	// OIDCStateLength is the byte length of the random state value.
	OIDCStateLength = 24
)
