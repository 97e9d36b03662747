package bandit

import (
	"context"
	"fmt"

	"cartCompanion/pkg/logger"
)

// State is the persisted form of the counters.
type State struct {
	Impressions map[string]int `json:"impressions"`
	Accepts     map[string]int `json:"accepts"`
}

// StateStore persists counter snapshots between restarts.
// GetState returns (nil, nil) when nothing has been saved yet.
type StateStore interface {
	GetState(ctx context.Context, key string) (*State, error)
	SaveState(ctx context.Context, key string, state *State) error
}

const DefaultStateKey = "cart_addon"

// LoadInto restores a saved snapshot into b. A missing snapshot is not an error.
func LoadInto(ctx context.Context, store StateStore, key string, b *UCB) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	st, err := store.GetState(ctx, key)
	if err != nil {
		return fmt.Errorf("get bandit state: %w", err)
	}
	if st == nil {
		logger.Info("no saved bandit state", "key", key)
		return nil
	}
	b.Restore(*st)
	logger.Info("bandit state restored", "key", key, "items", len(st.Impressions))
	return nil
}

// SaveFrom writes the current counters of b.
func SaveFrom(ctx context.Context, store StateStore, key string, b *UCB) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	st := b.Snapshot()
	if err := store.SaveState(ctx, key, &st); err != nil {
		return fmt.Errorf("save bandit state: %w", err)
	}
	return nil
}
