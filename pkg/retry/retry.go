// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

// Package retry provides a small, explicit bounded-retry policy.
//
// # Overview
//
// Some side effects (notification delivery, auth-state polling on the
// client) want a handful of re-attempts with a fixed delay schedule. The
// policy is a plain value with its bounds in the open — no closure-captured
// loop state, no hidden globals.
package retry

import (
	"context"
	"time"
)

// DefaultDelay is a reasonable base wait for background side effects.
const DefaultDelay = 500 * time.Millisecond

// Policy describes a bounded retry schedule.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// Delay is the base wait between attempts.
	Delay time.Duration

	// Linear, when true, grows the wait linearly (Delay, 2*Delay, ...).
	// When false every wait is exactly Delay.
	Linear bool
}

// Do runs fn until it succeeds, the policy is exhausted, or the context is
// cancelled. The last error is returned when all attempts fail.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		// No wait after the final attempt.
		if attempt == attempts {
			break
		}

		wait := p.Delay
		if p.Linear {
			wait = time.Duration(attempt) * p.Delay
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
