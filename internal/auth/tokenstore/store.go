// Package tokenstore persists hashed refresh tokens in Redis with a TTL.
// Storing only the SHA-256 hash means a Redis dump never leaks usable tokens.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned when a refresh token is unknown or expired.
var ErrTokenNotFound = errors.New("refresh token not found")

const (
	keyPrefix      = "auth:refresh:"
	resetKeyPrefix = "auth:reset:"
)

// Store is a Redis-backed refresh token store.
type Store struct {
	client *redis.Client
}

// New creates a refresh token store over the given Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Save associates a hashed refresh token with a user for ttl.
func (s *Store) Save(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+tokenHash, userID.String(), ttl).Err()
}

// Lookup resolves a hashed refresh token to its user ID.
func (s *Store) Lookup(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	raw, err := s.client.Get(ctx, keyPrefix+tokenHash).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt refresh token entry: %w", err)
	}
	return userID, nil
}

// Revoke deletes a hashed refresh token. Revoking an unknown token is not an error.
func (s *Store) Revoke(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, keyPrefix+tokenHash).Err()
}

// SaveReset associates a hashed password-reset token with a user for ttl.
func (s *Store) SaveReset(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, resetKeyPrefix+tokenHash, userID.String(), ttl).Err()
}

// ConsumeReset resolves and deletes a hashed password-reset token in one
// step, so a reset link can only be used once.
func (s *Store) ConsumeReset(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	raw, err := s.client.GetDel(ctx, resetKeyPrefix+tokenHash).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("consume reset token: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt reset token entry: %w", err)
	}
	return userID, nil
}
