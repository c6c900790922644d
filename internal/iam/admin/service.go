// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

/*
Package admin implements the administrative account workflow.

It covers the approval gate transitions: approving a pending registration
(assigning a role and seeding the permission map), rejecting one (which
removes the account outright), and editing the permission map of approved
members.

# Architecture

The package reuses the auth domain's entities and storage contracts; it owns
no tables of its own. Every operation here is reachable only through
admin-gated routes.
*/
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bgecorp/portal/internal/iam/auth"
	"github.com/bgecorp/portal/internal/iam/capability"
	"github.com/bgecorp/portal/internal/platform/apperr"
	"github.com/bgecorp/portal/internal/platform/notify"
	"github.com/bgecorp/portal/internal/platform/sec"
	"github.com/bgecorp/portal/pkg/pagination"
)

// Service implements the administrative account use cases.
type Service struct {
	userRepository    auth.UserRepository
	sessionRepository auth.SessionRepository
	notifier          notify.Notifier
	logger            *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo auth.UserRepository,
	sessionRepo auth.SessionRepository,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		notifier:          notifier,
		logger:            logger,
	}
}

// # Approval Workflow

/*
Approve transitions a pending account to active.

Description: Assigns the given role and seeds the default permission map for
that role in one step, then notifies the member. Approving an already
approved account simply re-applies role and defaults (last write wins).

Parameters:
  - ctx: context.Context
  - identityID: string
  - role: sec.UserRole

Returns:
  - *auth.User: The account after approval
  - err: Validation, NotFound, or storage failures
*/
func (service *Service) Approve(ctx context.Context, identityID string, role sec.UserRole) (*auth.User, error) {
	if !role.IsValid() {
		return nil, apperr.ValidationError("Unknown role: " + string(role))
	}

	defaults := capability.DefaultForRole(role)
	if err := service.userRepository.Approve(ctx, identityID, string(role), defaults); err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("admin_service_approve_reload_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "account approved",
		slog.String("account_id", user.ID),
		slog.String("role", string(role)),
	)

	// Best-effort; a delivery failure never undoes the approval.
	notify.Send(ctx, service.logger, "account_approved", func(ctx context.Context) error {
		return service.notifier.AccountApproved(ctx, user.Email)
	})

	return user, nil
}

/*
Reject removes a pending registration.

Description: Deletion is hard: the account row is gone, no audit trail is
retained, and a subsequent login for that email fails exactly like a
never-registered one. Any sessions the account somehow held are revoked
first.

Parameters:
  - ctx: context.Context
  - identityID: string

Returns:
  - err: NotFound or storage failures
*/
func (service *Service) Reject(ctx context.Context, identityID string) error {
	user, err := service.userRepository.FindByID(ctx, identityID)
	if err != nil {
		return err
	}

	_ = service.sessionRepository.RevokeAll(ctx, user.ID)

	if err := service.userRepository.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("admin_service_reject_failed: %w", err)
	}

	service.logger.InfoContext(ctx, "account rejected",
		slog.String("account_id", user.ID),
		slog.String("email", user.Email),
	)

	// The email is captured before deletion; the account no longer exists.
	notify.Send(ctx, service.logger, "account_rejected", func(ctx context.Context) error {
		return service.notifier.AccountRejected(ctx, user.Email)
	})

	return nil
}

// # Permission Management

/*
SetCapabilities replaces an account's stored permission map wholesale.

Description: Keys are normalized before storage so the open string namespace
stays free of casing and whitespace variants. The effective set a session
sees is still resolved per request, so changes land on the member's next
navigation without a re-login.

Parameters:
  - context: context.Context
  - identityID: string
  - raw: map[string]bool (capability key -> granted)

Returns:
  - *auth.User: The account after the update
  - err: Validation, NotFound, or storage failures
*/
func (service *Service) SetCapabilities(context context.Context, identityID string, raw map[string]bool) (*auth.User, error) {
	permissions := capability.Set{}
	for rawKey, granted := range raw {
		key := capability.Normalize(rawKey)
		if key == "" {
			return nil, apperr.ValidationError("Invalid capability key: " + rawKey)
		}
		permissions[key] = granted
	}

	if err := service.userRepository.ReplacePermissions(context, identityID, permissions); err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByID(context, identityID)
	if err != nil {
		return nil, fmt.Errorf("admin_service_set_capabilities_reload_failed: %w", err)
	}

	return user, nil
}

// # Listings

/*
ListPending returns a page of accounts awaiting approval.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*auth.User: Page of pending accounts, newest first
  - int: Total pending accounts
  - err: Storage failures
*/
func (service *Service) ListPending(context context.Context, params pagination.Params) ([]*auth.User, int, error) {
	return service.userRepository.ListByApproval(context, false, params)
}

/*
ListApproved returns a page of active accounts.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*auth.User: Page of approved accounts, newest first
  - int: Total approved accounts
  - err: Storage failures
*/
func (service *Service) ListApproved(context context.Context, params pagination.Params) ([]*auth.User, int, error) {
	return service.userRepository.ListByApproval(context, true, params)
}
