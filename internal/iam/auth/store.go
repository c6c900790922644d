// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package auth

import (
	"context"
	"time"

	"github.com/bgecorp/portal/internal/iam/capability"
	"github.com/bgecorp/portal/pkg/pagination"
)

// # User Data Access

// UserRepository defines the data access contract for portal accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByExternalSubject returns the account bound to the given identity
		provider subject id.

		Parameters:
		  - context: context.Context
		  - subject: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByExternalSubject(context context.Context, subject string) (*User, error)

	/*
		Create persists a brand-new portal account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdateIdentityBinding persists the external subject id and avatar
		backfilled during a federated login.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - subject: string
		  - avatarURL: string

		Returns:
		  - error: Persistence failures
	*/
	UpdateIdentityBinding(context context.Context, userID, subject, avatarURL string) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		Approve flips the approval flag, assigns the role, and seeds the
		permission map in a single statement.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - role: string
		  - permissions: capability.Set

		Returns:
		  - error: Persistence failures
	*/
	Approve(context context.Context, userID, role string, permissions capability.Set) error

	/*
		ReplacePermissions overwrites the stored permission map wholesale.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - permissions: capability.Set

		Returns:
		  - error: Persistence failures
	*/
	ReplacePermissions(context context.Context, userID string, permissions capability.Set) error

	/*
		Delete permanently removes the account row.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		ListByApproval returns a page of accounts filtered by approval status,
		newest first, with the total count for pagination.

		Parameters:
		  - context: context.Context
		  - approved: bool
		  - params: pagination.Params

		Returns:
		  - []*User: Page of accounts
		  - int: Total matching rows
		  - error: Database retrieval failures
	*/
	ListByApproval(context context.Context, approved bool, params pagination.Params) ([]*User, int, error)
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {

	/*
		Create persists a new tracking session for an authenticated login.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the active session matching the given token hash.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		Revoke marks a specific session as permanently invalidated.

		Parameters:
		  - context: context.Context
		  - sessionID: string

		Returns:
		  - error: Persistence failures
	*/
	Revoke(context context.Context, sessionID string) error

	/*
		RevokeAll revokes every active session belonging to the userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	RevokeAll(context context.Context, userID string) error

	/*
		DeleteExpired physically removes sessions whose ExpiresAt is in the past.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) error
}

// # Volatile Data Access

// ResetTicketRepository defines the contract for storing volatile password reset tickets.
type ResetTicketRepository interface {

	/*
		Set stores a reset ticket associated with a userID for a limited duration,
		displacing any previously issued ticket for that user.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Consume atomically retrieves and deletes the userID associated with a
		ticket token. A second call with the same token fails.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: apperr.InvalidResetTicket or retrieval failures
	*/
	Consume(context context.Context, token string) (string, error)
}

// OIDCStateRepository defines the contract for the short-lived state values
// that pin a federated login round trip to the browser that started it.
type OIDCStateRepository interface {

	/*
		Set stores a state value for the duration of the provider round trip.

		Parameters:
		  - context: context.Context
		  - state: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, state string, ttl time.Duration) error

	/*
		Consume atomically verifies and deletes a state value. A state can
		complete at most one callback.

		Parameters:
		  - context: context.Context
		  - state: string

		Returns:
		  - error: apperr.Unauthorized or retrieval failures
	*/
	Consume(context context.Context, state string) error
}
