// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

// Package notify delivers account-lifecycle messages to users.
//
// # Delivery Semantics
//
// All deliveries are best-effort. Callers treat the notifier as fire-and-forget:
// a failed delivery is logged and swallowed, it never fails the operation that
// triggered it. Sensitive material (reset links) is passed through verbatim and
// must never be logged by implementations other than the development one.
package notify

import (
	"context"
	"log/slog"

	"github.com/bgecorp/portal/pkg/retry"
)

// Notifier sends account-lifecycle messages.
type Notifier interface {
	// RegistrationReceived tells a newly registered user their account awaits approval.
	RegistrationReceived(ctx context.Context, email string) error

	// AccountApproved tells a user an administrator approved their account.
	AccountApproved(ctx context.Context, email string) error

	// AccountRejected tells a user an administrator rejected their registration.
	AccountRejected(ctx context.Context, email string) error

	// PasswordReset delivers a single-use password reset link.
	PasswordReset(ctx context.Context, email string, resetURL string) error
}

// LogNotifier is a development [Notifier] that writes messages to the
// structured log instead of sending mail.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a [LogNotifier] backed by the given logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) RegistrationReceived(ctx context.Context, email string) error {
	n.logger.InfoContext(ctx, "notify: registration received",
		slog.String("email", email),
	)
	return nil
}

func (n *LogNotifier) AccountApproved(ctx context.Context, email string) error {
	n.logger.InfoContext(ctx, "notify: account approved",
		slog.String("email", email),
	)
	return nil
}

func (n *LogNotifier) AccountRejected(ctx context.Context, email string) error {
	n.logger.InfoContext(ctx, "notify: account rejected",
		slog.String("email", email),
	)
	return nil
}

func (n *LogNotifier) PasswordReset(ctx context.Context, email string, resetURL string) error {
	// Logging the link is acceptable only for local development.
	n.logger.InfoContext(ctx, "notify: password reset",
		slog.String("email", email),
		slog.String("reset_url", resetURL),
	)
	return nil
}

// Send runs a single delivery attempt function under the package retry policy
// and logs the terminal failure. It never returns an error.
//
// # Usage
//
//	notify.Send(ctx, logger, "account approved", func(ctx context.Context) error {
//	    return notifier.AccountApproved(ctx, user.Email)
//	})
func Send(ctx context.Context, logger *slog.Logger, kind string, fn func(ctx context.Context) error) {
	policy := retry.Policy{MaxAttempts: 3, Delay: retry.DefaultDelay}
	if err := policy.Do(ctx, fn); err != nil {
		logger.WarnContext(ctx, "notification delivery failed",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
	}
}
