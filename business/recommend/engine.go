package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"cartCompanion/business/bandit"
	"cartCompanion/business/catalog"
	"cartCompanion/business/ranker"
	"cartCompanion/domain"
	"cartCompanion/pkg/logger"
)

// Query is one validated, defaulted recommendation call.
type Query struct {
	UserID    string
	TimeOfDay string
	Cart      []string
	TopK      int
}

// Engine runs the candidate -> feature -> model -> bandit -> top-k pipeline.
// The model is swapped atomically; the bandit serializes its own counters.
type Engine struct {
	catalog  *catalog.Catalog
	cfg      Config
	model    atomic.Pointer[ranker.LogisticModel]
	explorer *bandit.UCB
	elig     EligibilityChecker
}

// NewEngine fails when the model does not match the feature layout.
func NewEngine(
	cat *catalog.Catalog,
	cfg Config,
	model *ranker.LogisticModel,
	explorer *bandit.UCB,
	elig EligibilityChecker,
) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if err := model.Validate(ranker.FeatureDim); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	if explorer == nil {
		explorer = bandit.NewUCB(cfg.UCBAlpha)
	}
	if elig == nil {
		elig = NoopEligibilityChecker{}
	}

	e := &Engine{
		catalog:  cat,
		cfg:      cfg,
		explorer: explorer,
		elig:     elig,
	}
	e.model.Store(model)
	return e, nil
}

func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Bandit() *bandit.UCB { return e.explorer }

func (e *Engine) Model() *ranker.LogisticModel { return e.model.Load() }

// SwapModel replaces the scoring model. In-flight calls keep the model they started with.
func (e *Engine) SwapModel(m *ranker.LogisticModel) error {
	if err := m.Validate(ranker.FeatureDim); err != nil {
		return fmt.Errorf("swap model: %w", err)
	}
	e.model.Store(m)
	ModelSwapsTotal.Inc()
	logger.Info("scoring model swapped", "bias", m.Bias)
	return nil
}

// ResolveUser returns the stored profile, or a synthesized one preferring
// the restaurant's cuisine.
func (e *Engine) ResolveUser(userID string, rc domain.RestaurantContext) domain.UserProfile {
	if u, ok := e.catalog.User(userID); ok {
		return u
	}
	return domain.NewUserProfile(userID, false, e.cfg.UnknownUserCartValue, rc.Cuisine)
}

// Candidates runs the three generators and merges them in priority order.
func (e *Engine) Candidates(cart []string) []domain.Candidate {
	coLimit, mealLimit, popLimit := e.cfg.Limits()
	return MergeCandidates(
		CooccurrenceCandidates(e.catalog, cart, coLimit),
		MealGraphCandidates(e.catalog, cart, mealLimit),
		PopularityCandidates(e.catalog, cart, popLimit),
	)
}

type scored struct {
	item     domain.Item
	reason   domain.Reason
	features ranker.FeatureVector
	model    float64
	boost    float64
	score    float64
}

// rank scores every eligible candidate with one model snapshot and sorts
// descending. When withBandit is set the exploration boost is added and the
// list re-sorted; equal scores keep their prior order.
func (e *Engine) rank(ctx context.Context, q Query, rc domain.RestaurantContext, withBandit bool) []scored {
	model := e.model.Load()
	user := e.ResolveUser(q.UserID, rc)
	inCart := toSet(q.Cart)

	var out []scored
	for _, c := range e.Candidates(q.Cart) {
		if _, ok := inCart[c.ItemID]; ok {
			continue
		}
		item, ok := e.catalog.Item(c.ItemID)
		if !ok {
			continue
		}
		eligible, err := e.elig.IsEligible(ctx, q.UserID, rc.RestaurantID, c.ItemID)
		if err != nil {
			logger.Warn("eligibility check failed, keeping item",
				"trace_id", TraceIDFromContext(ctx),
				"item_id", c.ItemID,
				"error", err,
			)
		} else if !eligible {
			continue
		}

		v := ranker.Build(e.catalog, ranker.Input{
			Cart:      q.Cart,
			Candidate: item,
			Reason:    c.Reason,
			User:      user,
			Context:   rc,
			TimeOfDay: q.TimeOfDay,
		})
		p := model.Score(v)
		out = append(out, scored{item: item, reason: c.Reason, features: v, model: p, score: p})
		CandidatesTotal.WithLabelValues(string(c.Reason)).Inc()
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })

	if withBandit {
		ids := make([]string, len(out))
		for i := range out {
			ids[i] = out[i].item.ID
		}
		for i, b := range e.explorer.Boosts(ids) {
			out[i].boost = b
			out[i].score = out[i].model + b
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	}
	return out
}

// Recommend ranks add-ons for one cart and counts an impression for every
// returned item.
func (e *Engine) Recommend(ctx context.Context, q Query, rc domain.RestaurantContext) (domain.RecommendationResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationResponse{}, fmt.Errorf("context error: %w", err)
	}
	start := time.Now()

	ranked := e.rank(ctx, q, rc, e.cfg.BanditEnabled)

	k := q.TopK
	if k < 0 {
		k = 0
	}
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	recs := make([]domain.RecommendationItem, 0, len(ranked))
	shown := make([]string, 0, len(ranked))
	for _, r := range ranked {
		recs = append(recs, domain.RecommendationItem{
			ItemID: r.item.ID,
			Name:   r.item.Name,
			Score:  roundScore(r.score),
			Reason: r.reason,
		})
		shown = append(shown, r.item.ID)
	}
	e.explorer.LogImpressions(shown)

	elapsed := time.Since(start)
	RecommendLatency.Observe(elapsed.Seconds())

	logger.Debug("recommend",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", q.UserID,
		"restaurant_id", rc.RestaurantID,
		"cart_size", len(q.Cart),
		"returned", len(recs),
	)

	return domain.RecommendationResponse{
		Recommendations: recs,
		LatencyMS:       elapsed.Milliseconds(),
	}, nil
}

// LogAccept counts an explicit acceptance for the bandit.
func (e *Engine) LogAccept(itemID string) {
	e.explorer.LogAccept(itemID)
}

func roundScore(s float64) float64 {
	return math.Round(s*1e4) / 1e4
}
