package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"restpki-batch/internal/config"
)

func newTestClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFromClient(client, zap.NewNop()), mr
}

func TestGetDelRemovesKey(t *testing.T) {
	rc, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "k", "v", time.Minute))
	require.True(t, mr.Exists("k"))

	val, err := rc.GetDel(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", val)
	require.False(t, mr.Exists("k"))

	_, err = rc.GetDel(ctx, "k")
	require.True(t, IsNil(err))
}

func TestSetHonoursExpiration(t *testing.T) {
	rc, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	require.False(t, mr.Exists("k"))
	_, err := rc.GetDel(ctx, "k")
	require.True(t, IsNil(err))
}

func TestNewRedisClientDisabled(t *testing.T) {
	cfg := &config.Config{}
	rc, err := NewRedisClient(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, rc)
}

func TestNewRedisClientConnects(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cfg := &config.Config{Redis: config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port}}

	lc := fxtest.NewLifecycle(t)
	rc, err := NewRedisClient(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, rc)
	require.NoError(t, rc.Ping(context.Background()))
	lc.RequireStart().RequireStop()
}
