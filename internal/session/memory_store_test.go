package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := store.Create(ctx, 7, time.Hour)
	require.NoError(t, err)
	require.Len(t, sess.Token, 64)
	assert.Equal(t, 7, sess.UserID)

	got, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, got.Token)
	assert.Equal(t, 7, got.UserID)
}

func TestMemoryStoreTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, err := store.Create(ctx, 1, time.Hour)
	require.NoError(t, err)
	b, err := store.Create(ctx, 1, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestMemoryStoreGetUnknownToken(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	sess, err := store.Create(ctx, 1, time.Hour)
	require.NoError(t, err)

	// Still valid just before expiry.
	store.SetClock(func() time.Time { return now.Add(59 * time.Minute) })
	_, err = store.Get(ctx, sess.Token)
	require.NoError(t, err)

	// Expired at and after the deadline, and lazily cleaned.
	store.SetClock(func() time.Time { return now.Add(time.Hour) })
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreDestroyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess, err := store.Create(ctx, 1, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, sess.Token))
	require.NoError(t, store.Destroy(ctx, sess.Token))

	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDestroyAllForUserKeepsException(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	keep, err := store.Create(ctx, 1, time.Hour)
	require.NoError(t, err)
	drop1, err := store.Create(ctx, 1, time.Hour)
	require.NoError(t, err)
	drop2, err := store.Create(ctx, 1, time.Hour)
	require.NoError(t, err)
	other, err := store.Create(ctx, 2, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.DestroyAllForUser(ctx, 1, keep.Token))

	_, err = store.Get(ctx, keep.Token)
	assert.NoError(t, err)
	_, err = store.Get(ctx, drop1.Token)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, drop2.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	// Another user's session is untouched.
	_, err = store.Get(ctx, other.Token)
	assert.NoError(t, err)
}

func TestMemoryStoreDestroyAllForUserWithoutException(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, err := store.Create(ctx, 1, time.Hour)
	require.NoError(t, err)
	b, err := store.Create(ctx, 1, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.DestroyAllForUser(ctx, 1, ""))

	_, err = store.Get(ctx, a.Token)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, b.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}
