// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

// PostgreSQL implementations of the identity storage contracts.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement domain-defined interfaces (e.g., [UserRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
// The permission map column is JSONB; pgx marshals [capability.Set] through
// encoding/json transparently.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bgecorp/portal/internal/iam/capability"
	"github.com/bgecorp/portal/internal/platform/apperr"
	"github.com/bgecorp/portal/internal/platform/dberr"
	"github.com/bgecorp/portal/pkg/pagination"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const accountColumns = `
	id, email, passwordhash, firstname, lastname, avatarurl,
	role, approved, permissions, externalsubject, createdat, updatedat`

// scanAccount hydrates a User from a row carrying accountColumns.
func scanAccount(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.AvatarURL,
		&user.Role,
		&user.Approved,
		&user.Permissions,
		&user.ExternalSubject,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if user.Permissions == nil {
		user.Permissions = capability.Set{}
	}
	return user, nil
}

/*
Create persists a new account record into the iam.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO iam.account (
			id, email, passwordhash, firstname, lastname, avatarurl,
			role, approved, permissions, externalsubject, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Permissions == nil {
		user.Permissions = capability.Set{}
	}

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.AvatarURL,
		user.Role,
		user.Approved,
		user.Permissions,
		user.ExternalSubject,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	return nil
}

/*
FindByEmail retrieves an account by its unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM iam.account
		WHERE email = $1`

	user, err := scanAccount(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account not found with this email")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves an account by its unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM iam.account
		WHERE id = $1`

	user, err := scanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account not found")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByExternalSubject retrieves an account bound to a federated subject id.

Parameters:
  - context: context.Context
  - subject: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByExternalSubject(context context.Context, subject string) (*User, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM iam.account
		WHERE externalsubject = $1`

	user, err := scanAccount(repository.pool.QueryRow(context, query, subject))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account not found for this identity")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_subject_failed: %w", err)
	}

	return user, nil
}

/*
UpdateIdentityBinding persists the subject id and avatar captured during a
federated login.

Description: Avatar is only backfilled when the provider supplied one, so a
login without a picture never clears an existing avatar.

Parameters:
  - context: context.Context
  - userID: string
  - subject: string
  - avatarURL: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdateIdentityBinding(context context.Context, userID, subject, avatarURL string) error {
	const query = `
		UPDATE iam.account
		SET externalsubject = $2,
		    avatarurl = CASE WHEN $3 <> '' THEN $3 ELSE avatarurl END,
		    updatedat = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, subject, avatarURL, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_binding_failed: %w", err)
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific account.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE iam.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

/*
Approve flips the approval flag, assigns the role, and seeds the permission
map in one statement.

Parameters:
  - context: context.Context
  - userID: string
  - role: string
  - permissions: capability.Set

Returns:
  - error: apperr.NotFound if the account vanished, or execution errors
*/
func (repository *PostgresUserRepository) Approve(context context.Context, userID, role string, permissions capability.Set) error {
	const query = `
		UPDATE iam.account
		SET approved = TRUE, role = $2, permissions = $3, updatedat = $4
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, userID, role, permissions, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_approve_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account not found")
	}

	return nil
}

/*
ReplacePermissions overwrites the stored permission map wholesale.

Parameters:
  - context: context.Context
  - userID: string
  - permissions: capability.Set

Returns:
  - error: apperr.NotFound if the account vanished, or execution errors
*/
func (repository *PostgresUserRepository) ReplacePermissions(context context.Context, userID string, permissions capability.Set) error {
	const query = `
		UPDATE iam.account
		SET permissions = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, userID, permissions, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_replace_permissions_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account not found")
	}

	return nil
}

/*
Delete permanently removes the account row.

Description: Hard delete. The approval workflow treats rejection as
destructive, so there is no soft-delete column on this table.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound if the account vanished, or execution errors
*/
func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM iam.account WHERE id = $1"

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account not found")
	}

	return nil
}

/*
ListByApproval returns a page of accounts filtered by approval status.

Description: Newest first. The total count feeds pagination metadata.

Parameters:
  - context: context.Context
  - approved: bool
  - params: pagination.Params

Returns:
  - []*User: Page of accounts
  - int: Total matching rows
  - error: Database retrieval failures
*/
func (repository *PostgresUserRepository) ListByApproval(context context.Context, approved bool, params pagination.Params) ([]*User, int, error) {
	const countQuery = "SELECT COUNT(*) FROM iam.account WHERE approved = $1"

	var total int
	if err := repository.pool.QueryRow(context, countQuery, approved).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	const query = `
		SELECT ` + accountColumns + `
		FROM iam.account
		WHERE approved = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, approved, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit)
	for rows.Next() {
		user, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_rows_failed: %w", err)
	}

	return users, total, nil
}

// # Session Repository

// PostgresSessionRepository implements the SessionRepository interface.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

/*
Create persists a new session record into the iam.session table.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO iam.session (
			id, userid, tokenhash, useragent, ipaddress, remembered, expiresat, isrevoked, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.UserAgent,
		session.IPAddress,
		session.Remembered,
		session.ExpiresAt,
		session.IsRevoked,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByTokenHash retrieves an active session by its unique token hash.

Description: Securely resolves a refresh token hash into an active session.
Revoked and expired sessions are invisible to this lookup.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated session metadata
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	const query = `
		SELECT id, userid, tokenhash, useragent, ipaddress, remembered, expiresat, isrevoked, createdat
		FROM iam.session
		WHERE tokenhash = $1 AND isrevoked = FALSE AND expiresat > NOW()`

	session := &Session{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.UserAgent,
		&session.IPAddress,
		&session.Remembered,
		&session.ExpiresAt,
		&session.IsRevoked,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session not found or expired")
		}
		return nil, fmt.Errorf("postgres_session_repo_find_failed: %w", err)
	}

	return session, nil
}

/*
Revoke marks a specific session as revoked.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - error: Revocation failures
*/
func (repository *PostgresSessionRepository) Revoke(context context.Context, sessionID string) error {
	const query = "UPDATE iam.session SET isrevoked = TRUE WHERE id = $1"
	_, err := repository.pool.Exec(context, query, sessionID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_failed: %w", err)
	}
	return nil
}

/*
RevokeAll marks all active sessions for a user as revoked.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Batch revocation failures
*/
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, userID string) error {
	const query = "UPDATE iam.session SET isrevoked = TRUE WHERE userid = $1 AND isrevoked = FALSE"
	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_all_failed: %w", err)
	}
	return nil
}

/*
DeleteExpired permanently removes all sessions that have passed their expiration.

Parameters:
  - context: context.Context

Returns:
  - error: Cleanup failures
*/
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context) error {
	const query = "DELETE FROM iam.session WHERE expiresat <= NOW()"
	_, err := repository.pool.Exec(context, query)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_delete_expired_failed: %w", err)
	}
	return nil
}
