package announcements

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise/internal/shared"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheMissThenHit(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.GetUnread(ctx, 1, 7)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.SetUnread(ctx, 1, 7, 3))

	count, ok, err := cache.GetUnread(ctx, 1, 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(3), count)
}

func TestCacheInvalidateOrphansEveryUser(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetUnread(ctx, 1, 7, 3))
	require.NoError(t, cache.SetUnread(ctx, 1, 8, 5))
	require.NoError(t, cache.Invalidate(ctx, 1))

	for _, userID := range []int64{7, 8} {
		_, ok, err := cache.GetUnread(ctx, 1, userID)
		require.NoError(t, err)
		require.False(t, ok, "user %d must miss after invalidation", userID)
	}
}

func TestCacheIsolatesStores(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetUnread(ctx, 1, 7, 3))
	require.NoError(t, cache.SetUnread(ctx, 2, 7, 9))
	require.NoError(t, cache.Invalidate(ctx, 1))

	count, ok, err := cache.GetUnread(ctx, 2, 7)
	require.NoError(t, err)
	require.True(t, ok, "other store's entries must survive")
	require.Equal(t, int64(9), count)
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	_, ok, err := cache.GetUnread(ctx, 1, 7)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, cache.SetUnread(ctx, 1, 7, 3))
	require.NoError(t, cache.Invalidate(ctx, 1))
}

type countingRepo struct {
	RepositoryPort
	unread int64
	calls  int
}

func (r *countingRepo) CountUnread(ctx context.Context, storeID, userID int64) (int64, error) {
	r.calls++
	return r.unread, nil
}

func TestUnreadCountServedFromCache(t *testing.T) {
	repo := &countingRepo{unread: 4}
	svc := NewService(repo, newTestCache(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	principal := shared.Principal{UserID: 7, StoreID: 1, Role: shared.RoleEmployee}
	ctx := context.Background()

	count, err := svc.UnreadCount(ctx, principal)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)
	require.Equal(t, 1, repo.calls)

	// Second read comes from the cache.
	count, err = svc.UnreadCount(ctx, principal)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)
	require.Equal(t, 1, repo.calls)
}
