package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client), mr
}

func TestSaveAndLookup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, "hash-1", userID, time.Hour))

	got, err := store.Lookup(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, userID, got)
}

func TestLookupUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Lookup(context.Background(), "nope")
	require.True(t, errors.Is(err, ErrTokenNotFound))
}

func TestLookupAfterExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "hash-2", uuid.New(), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Lookup(ctx, "hash-2")
	require.True(t, errors.Is(err, ErrTokenNotFound))
}

func TestRevoke(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "hash-3", uuid.New(), time.Hour))
	require.NoError(t, store.Revoke(ctx, "hash-3"))

	_, err := store.Lookup(ctx, "hash-3")
	require.True(t, errors.Is(err, ErrTokenNotFound))

	// Revoking again is a no-op.
	require.NoError(t, store.Revoke(ctx, "hash-3"))
}
