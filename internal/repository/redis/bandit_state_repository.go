package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cartCompanion/business/bandit"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

type BanditStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ bandit.StateStore = (*BanditStateRepository)(nil)

// NewBanditStateRepository stores snapshots under "bandit:state:{key}".
// A zero ttl keeps them forever.
func NewBanditStateRepository(client *redis.Client, ttl time.Duration) *BanditStateRepository {
	return &BanditStateRepository{
		client: client,
		ttl:    ttl,
	}
}

func stateKey(key string) string {
	return fmt.Sprintf("bandit:state:%s", key)
}

func (r *BanditStateRepository) GetState(ctx context.Context, key string) (*bandit.State, error) {
	val, err := r.client.Get(ctx, stateKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bandit state from Redis: %w", err)
	}

	var state bandit.State
	if err := json.Unmarshal(val, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bandit state: %w", err)
	}
	return &state, nil
}

func (r *BanditStateRepository) SaveState(ctx context.Context, key string, state *bandit.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal bandit state: %w", err)
	}

	if err := r.client.Set(ctx, stateKey(key), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store bandit state in Redis: %w", err)
	}
	return nil
}
