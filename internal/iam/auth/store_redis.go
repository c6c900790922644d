// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bgecorp/portal/internal/platform/apperr"
	"github.com/bgecorp/portal/internal/platform/constants"
)

// # Reset Ticket Repository

// RedisResetTicketRepository implements ResetTicketRepository using Redis.
//
// # Single Use
//
// Consumption uses GETDEL so a ticket can authorize exactly one password
// change even if two resets race on the same token.
type RedisResetTicketRepository struct {
	client *redis.Client
}

// NewResetTicketRepository creates a new Redis-backed ResetTicketRepository.
func NewResetTicketRepository(client *redis.Client) *RedisResetTicketRepository {
	return &RedisResetTicketRepository{client: client}
}

/*
Set stores a reset ticket with its associated userID and TTL.

Description: A secondary index keyed by userID displaces any previously issued
ticket for that user, so at most one ticket per account is actionable.

Parameters:
  - context: context.Context
  - token: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisResetTicketRepository) Set(context context.Context, token string, userID string, ttl time.Duration) error {

	ownerKey := constants.RedisPrefixResetTicket + "owner:" + userID

	// Displace the previous ticket for this user, if any.
	if previous, err := repository.client.Get(context, ownerKey).Result(); err == nil && previous != "" {
		_ = repository.client.Del(context, constants.RedisPrefixResetTicket+previous).Err()
	}

	key := constants.RedisPrefixResetTicket + token
	if err := repository.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_ticket_set_failed: %w", err)
	}
	if err := repository.client.Set(context, ownerKey, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_ticket_owner_set_failed: %w", err)
	}

	return nil
}

/*
Consume atomically retrieves and deletes the userID for a given ticket.

Description: Returns apperr.InvalidResetTicket if the ticket is absent,
expired, or already consumed.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: Owning UserID
  - error: apperr.InvalidResetTicket or connectivity errors
*/
func (repository *RedisResetTicketRepository) Consume(context context.Context, token string) (string, error) {

	key := constants.RedisPrefixResetTicket + token

	// GETDEL makes retrieval and invalidation a single atomic step.
	userID, err := repository.client.GetDel(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.InvalidResetTicket()
		}
		return "", fmt.Errorf("redis_reset_ticket_consume_failed: %w", err)
	}

	_ = repository.client.Del(context, constants.RedisPrefixResetTicket+"owner:"+userID).Err()

	return userID, nil
}

// # OIDC State Repository

// RedisOIDCStateRepository implements OIDCStateRepository using Redis.
type RedisOIDCStateRepository struct {
	client *redis.Client
}

// NewOIDCStateRepository creates a new Redis-backed OIDCStateRepository.
func NewOIDCStateRepository(client *redis.Client) *RedisOIDCStateRepository {
	return &RedisOIDCStateRepository{client: client}
}

/*
Set stores a state value for the duration of the provider round trip.

Parameters:
  - context: context.Context
  - state: string
  - ttl: time.Duration

Returns:
  - error: Storage failures
*/
func (repository *RedisOIDCStateRepository) Set(context context.Context, state string, ttl time.Duration) error {

	key := constants.RedisPrefixOIDCState + state

	if err := repository.client.Set(context, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_oidc_state_set_failed: %w", err)
	}

	return nil
}

/*
Consume atomically verifies and deletes a state value.

Description: Returns apperr.Unauthorized for unknown or replayed states.

Parameters:
  - context: context.Context
  - state: string

Returns:
  - error: apperr.Unauthorized or connectivity errors
*/
func (repository *RedisOIDCStateRepository) Consume(context context.Context, state string) error {

	key := constants.RedisPrefixOIDCState + state

	if _, err := repository.client.GetDel(context, key).Result(); err != nil {
		if errors.Is(err, redis.Nil) {
			return apperr.Unauthorized("Login state is invalid or expired")
		}
		return fmt.Errorf("redis_oidc_state_consume_failed: %w", err)
	}

	return nil
}
