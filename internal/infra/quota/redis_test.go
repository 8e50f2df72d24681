package quota

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, limit int) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l := NewRedisLimiter(client, limit)
	l.now = func() time.Time { return time.Date(2026, 5, 4, 23, 0, 0, 0, time.UTC) }
	return l, mr
}

func TestConsume_EnforcesDailyLimit(t *testing.T) {
	l, mr := newLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Consume(ctx, "user:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Consume(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, ok)

	// other principals have their own counter
	ok, err = l.Consume(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, mr.Exists("quota:20260504:user:1"))
	assert.Greater(t, mr.TTL("quota:20260504:user:1"), time.Duration(0))

	used, err := mr.Get("quota:20260504:user:1")
	require.NoError(t, err)
	assert.Equal(t, "3", used)
}

func TestConsume_NextDayResets(t *testing.T) {
	l, _ := newLimiter(t, 1)
	ctx := context.Background()

	ok, _ := l.Consume(ctx, "user:1")
	assert.True(t, ok)
	ok, _ = l.Consume(ctx, "user:1")
	assert.False(t, ok)

	l.now = func() time.Time { return time.Date(2026, 5, 5, 0, 1, 0, 0, time.UTC) }
	ok, err := l.Consume(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConsume_Disabled(t *testing.T) {
	l, _ := newLimiter(t, 0)
	ok, err := l.Consume(context.Background(), "user:1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConsume_RedisDown(t *testing.T) {
	l, mr := newLimiter(t, 5)
	mr.Close()
	_, err := l.Consume(context.Background(), "user:1")
	assert.Error(t, err)
}
