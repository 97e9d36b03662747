//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"cartCompanion/business/bandit"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanditStateRepository_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())

	repo := NewBanditStateRepository(client, time.Minute)
	key := "test_" + time.Now().Format("150405.000000")
	t.Cleanup(func() { client.Del(context.Background(), stateKey(key)) })

	st, err := repo.GetState(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, st)

	ucb := bandit.NewUCB(bandit.DefaultAlpha)
	ucb.LogImpressions([]string{"s_salan", "s_salan", "b_coke"})
	ucb.LogAccept("s_salan")
	require.NoError(t, bandit.SaveFrom(ctx, repo, key, ucb))

	restored := bandit.NewUCB(bandit.DefaultAlpha)
	require.NoError(t, bandit.LoadInto(ctx, repo, key, restored))
	assert.Equal(t, ucb.Snapshot(), restored.Snapshot())
}
