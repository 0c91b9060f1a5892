package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvistudio/storefront/internal/services/storefront/storage"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := New(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, mr
}

func TestOpenPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := Open(context.Background(), "redis://"+mr.Addr()+"/0", time.Second)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestOpenGivesUpWhenServerIsDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = Open(context.Background(), "redis://"+addr+"/0", 300*time.Millisecond)
	require.Error(t, err)
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open(context.Background(), "", time.Second)
	require.Error(t, err)
	_, err = Open(context.Background(), "http://not-redis", time.Second)
	require.Error(t, err)
}

func TestUserRoundTripAndDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, found, err := store.GetUser(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)

	seenAt := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, store.PutUser(ctx, "k1", storage.CachedUser{Email: "a@b.com", DisplayName: "Asha", SeenAt: seenAt}))
	assert.True(t, mr.Exists(keyPrefix+"k1"))

	user, found, err := store.GetUser(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "a@b.com", user.Email)
	assert.True(t, user.SeenAt.Equal(seenAt))

	require.NoError(t, store.DeleteUser(ctx, "k1"))
	assert.False(t, mr.Exists(keyPrefix+"k1"))
}

func TestPutUserSetsKeyTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.PutUser(ctx, "k1", storage.CachedUser{Email: "a@b.com", ExpiresAt: now.Add(time.Hour)}))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"k1"))

	mr.FastForward(2 * time.Hour)
	_, found, err := store.GetUser(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPutUserAlreadyExpiredDeletes(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutUser(ctx, "k1", storage.CachedUser{Email: "a@b.com"}))
	require.NoError(t, store.PutUser(ctx, "k1", storage.CachedUser{Email: "a@b.com", ExpiresAt: time.Now().Add(-time.Minute)}))
	assert.False(t, mr.Exists(keyPrefix+"k1"))
}

func TestCorruptRecordIsError(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set(keyPrefix+"k1", "not-json"))

	_, _, err := store.GetUser(context.Background(), "k1")
	require.Error(t, err)
}
