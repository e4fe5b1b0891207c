package redisrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/fedteam/sessions"
	"github.com/jrsteele09/fedteam/sessions/redisrepo"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	require.Equal(t, "fedteam:session:abc", redisrepo.Key("abc"))
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := redisrepo.NewClient("not a url")
	require.Error(t, err)

	c, err := redisrepo.NewClient("redis://localhost:6379/0")
	require.NoError(t, err)
	require.NoError(t, c.Close())
}

func TestUnreachableRedisReturnsErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	repo := redisrepo.New(client, time.Hour)
	ctx := context.Background()

	_, err := repo.Get(ctx, "s")
	require.Error(t, err)
	require.Error(t, repo.Upsert(ctx, "", sessions.Record{Token: "t"}))
	require.Error(t, repo.Ping(ctx))
}
