package recommend

import (
	"context"
	"strings"
)

// EligibilityChecker decides if an item may be shown to a user at a
// restaurant (stock, menu visibility).
type EligibilityChecker interface {
	IsEligible(ctx context.Context, userID, restaurantID, itemID string) (bool, error)
}

// NoopEligibilityChecker is the default implementation that allows everything.
type NoopEligibilityChecker struct{}

func (NoopEligibilityChecker) IsEligible(ctx context.Context, userID, restaurantID, itemID string) (bool, error) {
	return true, nil
}

// ExcludeItems hides a fixed set of items, e.g. ones out of stock.
type ExcludeItems map[string]struct{}

// NewExcludeItems builds the set, ignoring blank ids.
func NewExcludeItems(ids []string) ExcludeItems {
	out := make(ExcludeItems, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

func (e ExcludeItems) IsEligible(ctx context.Context, userID, restaurantID, itemID string) (bool, error) {
	_, hidden := e[itemID]
	return !hidden, nil
}
