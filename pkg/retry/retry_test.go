// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgecorp/portal/pkg/retry"
)

/*
TestPolicy_SucceedsAfterTransientFailures verifies the policy stops retrying
as soon as an attempt succeeds.
*/
func TestPolicy_SucceedsAfterTransientFailures(t *testing.T) {
	policy := retry.Policy{MaxAttempts: 3, Delay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

/*
TestPolicy_ExhaustionReturnsLastError verifies the final attempt's error
surfaces once the schedule is used up.
*/
func TestPolicy_ExhaustionReturnsLastError(t *testing.T) {
	policy := retry.Policy{MaxAttempts: 2, Delay: time.Millisecond}

	terminal := errors.New("still down")
	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return terminal
	})

	assert.ErrorIs(t, err, terminal)
	assert.Equal(t, 2, calls)
}

/*
TestPolicy_ZeroAttemptsStillRunsOnce verifies the floor of one attempt.
*/
func TestPolicy_ZeroAttemptsStillRunsOnce(t *testing.T) {
	policy := retry.Policy{}

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

/*
TestPolicy_ContextCancellationStopsTheSchedule verifies a cancelled context
wins over the remaining attempts.
*/
func TestPolicy_ContextCancellationStopsTheSchedule(t *testing.T) {
	policy := retry.Policy{MaxAttempts: 10, Delay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		// Cancel while Do is sitting in its first wait.
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := policy.Do(ctx, func(context.Context) error {
		calls++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
