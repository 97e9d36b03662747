package recommend

import (
	"context"
	"fmt"

	"cartCompanion/domain"
	"cartCompanion/pkg/logger"
)

// Explain returns the score breakdown for the same ranking Recommend would
// produce. It records no impressions.
func (e *Engine) Explain(ctx context.Context, q Query, rc domain.RestaurantContext) ([]domain.DebugRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	logger.Debug("recommend_debug",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", q.UserID,
		"restaurant_id", rc.RestaurantID,
		"top_k", q.TopK,
	)

	ranked := e.rank(ctx, q, rc, e.cfg.BanditEnabled)
	if k := max(q.TopK, 0); len(ranked) > k {
		ranked = ranked[:k]
	}

	out := make([]domain.DebugRecommendation, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, domain.DebugRecommendation{
			ItemID:      r.item.ID,
			Reason:      r.reason,
			ModelScore:  r.model,
			BanditBoost: r.boost,
			FinalScore:  r.score,
			Features:    r.features.Slice(),
		})
	}
	return out, nil
}
