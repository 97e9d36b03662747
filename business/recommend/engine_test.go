//go:build !integration

package recommend

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"cartCompanion/business/bandit"
	"cartCompanion/business/catalog"
	"cartCompanion/business/ranker"
	"cartCompanion/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	defaultModelOnce sync.Once
	defaultModel     *ranker.LogisticModel
	defaultModelErr  error
)

func sampleDefaultModel(t *testing.T) *ranker.LogisticModel {
	t.Helper()
	defaultModelOnce.Do(func() {
		defaultModel, defaultModelErr = ranker.TrainDefaultModel(catalog.Sample())
	})
	require.NoError(t, defaultModelErr)
	return defaultModel
}

// weightedModel puts weight w on one feature and nothing else.
func weightedModel(feature int, w, bias float64) *ranker.LogisticModel {
	weights := make([]float64, ranker.FeatureDim)
	weights[feature] = w
	return ranker.NewLogisticModel(weights, bias)
}

func newTestEngine(t *testing.T, cat *catalog.Catalog, m *ranker.LogisticModel, banditOn bool) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BanditEnabled = banditOn
	e, err := NewEngine(cat, cfg, m, bandit.NewUCB(cfg.UCBAlpha), nil)
	require.NoError(t, err)
	return e
}

var r10 = domain.RestaurantContext{RestaurantID: "r_10", Cuisine: "hyderabadi", PriceLevel: "mid", City: "Hyderabad"}

func recIDs(resp domain.RecommendationResponse) []string {
	out := make([]string, len(resp.Recommendations))
	for i, r := range resp.Recommendations {
		out[i] = r.ItemID
	}
	return out
}

func TestRecommend_CooccurrenceWinsTopOne(t *testing.T) {
	items := []domain.Item{
		{ID: "X", Name: "X", Category: domain.CategoryMain, Cuisine: "indian", Price: 200, Veg: true, Popularity: 0.3},
		{ID: "Y", Name: "Y", Category: domain.CategorySide, Cuisine: "indian", Price: 50, Veg: true, Popularity: 0.1},
		{ID: "Z", Name: "Z", Category: domain.CategorySide, Cuisine: "indian", Price: 50, Veg: true, Popularity: 0.9},
		{ID: "W", Name: "W", Category: domain.CategoryDessert, Cuisine: "indian", Price: 80, Veg: true, Popularity: 0.5},
	}
	cat, err := catalog.New(items, nil, []catalog.Affinity{{Source: "X", Candidate: "Y", Strength: 0.8}}, nil)
	require.NoError(t, err)

	e := newTestEngine(t, cat, weightedModel(ranker.FeatCooccurrence, 6, -3), true)
	resp, err := e.Recommend(context.Background(), Query{UserID: "anyone", TimeOfDay: "dinner", Cart: []string{"X"}, TopK: 1}, r10)
	require.NoError(t, err)

	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Y", resp.Recommendations[0].ItemID)
	assert.Equal(t, domain.ReasonCoOccurrence, resp.Recommendations[0].Reason)
	assert.GreaterOrEqual(t, resp.LatencyMS, int64(0))
}

func TestRecommend_PopularityOnlyFallback(t *testing.T) {
	items := []domain.Item{
		{ID: "A", Name: "A", Category: domain.CategoryMain, Popularity: 0.9},
		{ID: "B", Name: "B", Category: domain.CategoryMain, Popularity: 0.5},
		{ID: "C", Name: "C", Category: domain.CategoryMain, Popularity: 0.7},
		{ID: "D", Name: "D", Category: domain.CategoryBeverage, Popularity: 0.95},
	}
	cat, err := catalog.New(items, nil, nil, nil)
	require.NoError(t, err)

	e := newTestEngine(t, cat, weightedModel(ranker.FeatPopularity, 4, 0), true)
	resp, err := e.Recommend(context.Background(), Query{UserID: "u", TimeOfDay: "lunch", Cart: []string{"A"}, TopK: 8}, r10)
	require.NoError(t, err)

	assert.Equal(t, []string{"D", "C", "B"}, recIDs(resp))
	for _, r := range resp.Recommendations {
		assert.Equal(t, domain.ReasonPopularity, r.Reason)
	}
}

func TestRecommend_VegOnlyPreferenceBoundary(t *testing.T) {
	cat := catalog.Sample()
	u2, ok := cat.User("u_2")
	require.True(t, ok)
	require.True(t, u2.VegOnly)

	q := Query{UserID: "u_2", TimeOfDay: "dinner", Cart: []string{"s_raita"}, TopK: 20}

	// preference-driven model: every non-veg item ranks below every veg item
	prefModel := newTestEngine(t, cat, weightedModel(ranker.FeatUserPreference, 10, -5), false)
	dbg, err := prefModel.Explain(context.Background(), q, r10)
	require.NoError(t, err)
	require.NotEmpty(t, dbg)

	seenNonVeg := false
	for _, d := range dbg {
		item, _ := cat.Item(d.ItemID)
		if !item.Veg {
			seenNonVeg = true
			assert.Equal(t, 0.0, d.Features[ranker.FeatUserPreference], d.ItemID)
			assert.Less(t, d.FinalScore, 0.01, d.ItemID)
			continue
		}
		assert.False(t, seenNonVeg, "veg item %s ranked after a non-veg item", d.ItemID)
	}

	// the preference factor is a feature, not a filter: a popularity-driven
	// model still surfaces the most popular non-veg dish
	popModel := newTestEngine(t, cat, weightedModel(ranker.FeatPopularity, 10, -5), false)
	resp, err := popModel.Recommend(context.Background(), Query{UserID: "u_2", TimeOfDay: "dinner", Cart: []string{"s_raita"}, TopK: 1}, r10)
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1)
	top, _ := cat.Item(resp.Recommendations[0].ItemID)
	assert.Equal(t, "m_biryani", top.ID)
	assert.False(t, top.Veg)
}

func TestRecommend_DefaultModelPrefersSalanWithBiryani(t *testing.T) {
	cat := catalog.Sample()
	e := newTestEngine(t, cat, sampleDefaultModel(t), true)

	resp, err := e.Recommend(context.Background(), Query{UserID: "u_1", TimeOfDay: "dinner", Cart: []string{"m_biryani"}, TopK: 8}, r10)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Recommendations)
	assert.Equal(t, "s_salan", resp.Recommendations[0].ItemID)
	assert.Equal(t, domain.ReasonCoOccurrence, resp.Recommendations[0].Reason)
	assert.Equal(t, "Mirchi Ka Salan", resp.Recommendations[0].Name)
}

func TestRecommend_Properties(t *testing.T) {
	cat := catalog.Sample()
	e := newTestEngine(t, cat, sampleDefaultModel(t), true)

	all := make([]string, 0, len(cat.Items()))
	for _, it := range cat.Items() {
		all = append(all, it.ID)
	}
	carts := [][]string{{}, {"ghost"}}
	for i, a := range all {
		carts = append(carts, []string{a})
		for _, b := range all[i+1:] {
			carts = append(carts, []string{a, b})
		}
	}
	carts = append(carts, all, append([]string{"ghost"}, all[:4]...))

	for _, cart := range carts {
		for _, k := range []int{0, 1, 3, 8, 50} {
			resp, err := e.Recommend(context.Background(), Query{UserID: "u_1", TimeOfDay: "lunch", Cart: cart, TopK: k}, r10)
			require.NoError(t, err)

			inCart := toSet(cart)
			outside := 0
			for _, id := range all {
				if _, ok := inCart[id]; !ok {
					outside++
				}
			}
			assert.LessOrEqual(t, len(resp.Recommendations), k)
			assert.LessOrEqual(t, len(resp.Recommendations), outside)

			seen := map[string]bool{}
			for _, r := range resp.Recommendations {
				_, dup := inCart[r.ItemID]
				assert.False(t, dup, "cart item %s recommended for %v", r.ItemID, cart)
				assert.False(t, seen[r.ItemID], "duplicate %s", r.ItemID)
				seen[r.ItemID] = true
				assert.Equal(t, math.Round(r.Score*1e4)/1e4, r.Score)
			}
		}
	}
}

func TestRecommend_IdempotentWithoutBanditUpdates(t *testing.T) {
	cat := catalog.Sample()
	q := Query{UserID: "u_1", TimeOfDay: "dinner", Cart: []string{"m_biryani", "s_raita"}, TopK: 5}

	e := newTestEngine(t, cat, sampleDefaultModel(t), false)
	a, err := e.Recommend(context.Background(), q, r10)
	require.NoError(t, err)
	b, err := e.Recommend(context.Background(), q, r10)
	require.NoError(t, err)
	assert.Equal(t, a.Recommendations, b.Recommendations)

	// with exploration on, two engines with the same history agree
	e1 := newTestEngine(t, cat, sampleDefaultModel(t), true)
	e2 := newTestEngine(t, cat, sampleDefaultModel(t), true)
	c, err := e1.Recommend(context.Background(), q, r10)
	require.NoError(t, err)
	d, err := e2.Recommend(context.Background(), q, r10)
	require.NoError(t, err)
	assert.Equal(t, c.Recommendations, d.Recommendations)
}

func TestRecommend_LogsImpressions(t *testing.T) {
	cat := catalog.Sample()
	e := newTestEngine(t, cat, sampleDefaultModel(t), true)

	resp, err := e.Recommend(context.Background(), Query{UserID: "u_1", TimeOfDay: "dinner", Cart: []string{"m_biryani"}, TopK: 3}, r10)
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 3)

	for _, r := range resp.Recommendations {
		n, _ := e.Bandit().Counts(r.ItemID)
		assert.Equal(t, 1, n, r.ItemID)
	}
	n, _ := e.Bandit().Counts("b_lassi")
	assert.Equal(t, 0, n)

	e.LogAccept(resp.Recommendations[0].ItemID)
	_, accepts := e.Bandit().Counts(resp.Recommendations[0].ItemID)
	assert.Equal(t, 1, accepts)
}

func TestRecommend_BanditBoostReranks(t *testing.T) {
	items := []domain.Item{
		{ID: "m", Category: domain.CategoryMain, Popularity: 0.1},
		{ID: "a", Category: domain.CategoryBeverage, Popularity: 0.6},
		{ID: "b", Category: domain.CategoryBeverage, Popularity: 0.5},
	}
	cat, err := catalog.New(items, nil, nil, nil)
	require.NoError(t, err)

	e := newTestEngine(t, cat, weightedModel(ranker.FeatPopularity, 1, 0), true)
	// "a" has been shown many times and never accepted; "b" is unseen
	for i := 0; i < 200; i++ {
		e.Bandit().LogImpression("a")
	}

	dbg, err := e.Explain(context.Background(), Query{UserID: "u", TimeOfDay: "lunch", Cart: []string{"m"}, TopK: 2}, r10)
	require.NoError(t, err)
	require.Len(t, dbg, 2)
	assert.Equal(t, "b", dbg[0].ItemID)
	assert.Equal(t, 0.25, dbg[0].BanditBoost)
	assert.InDelta(t, dbg[0].ModelScore+dbg[0].BanditBoost, dbg[0].FinalScore, 1e-12)
	assert.Greater(t, dbg[1].ModelScore, dbg[0].ModelScore)

	n, _ := e.Bandit().Counts("b")
	assert.Equal(t, 0, n, "explain must not count impressions")
}

func TestRecommend_UnknownUserAndItems(t *testing.T) {
	cat := catalog.Sample()
	e := newTestEngine(t, cat, sampleDefaultModel(t), false)

	u := e.ResolveUser("stranger", r10)
	assert.False(t, u.VegOnly)
	assert.Equal(t, 300, u.AvgCartValue)
	assert.True(t, u.Prefers("hyderabadi"))
	assert.Len(t, u.PreferredCuisines, 1)

	resp, err := e.Recommend(context.Background(), Query{UserID: "stranger", TimeOfDay: "dinner", Cart: []string{"ghost", "m_biryani"}, TopK: 4}, r10)
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, 4)
}

func TestRecommend_TopKClampsAndCancel(t *testing.T) {
	cat := catalog.Sample()
	e := newTestEngine(t, cat, sampleDefaultModel(t), false)

	resp, err := e.Recommend(context.Background(), Query{UserID: "u_1", TimeOfDay: "dinner", Cart: []string{"m_biryani"}, TopK: -3}, r10)
	require.NoError(t, err)
	assert.Empty(t, resp.Recommendations)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Recommend(ctx, Query{UserID: "u_1", TopK: 3}, r10)
	require.ErrorIs(t, err, context.Canceled)
}

type flakyEligibility struct{}

func (flakyEligibility) IsEligible(ctx context.Context, userID, restaurantID, itemID string) (bool, error) {
	if itemID == "b_coke" {
		return false, errors.New("inventory down")
	}
	return itemID != "s_salan", nil
}

func TestRecommend_Eligibility(t *testing.T) {
	cat := catalog.Sample()
	cfg := DefaultConfig()
	e, err := NewEngine(cat, cfg, sampleDefaultModel(t), nil, flakyEligibility{})
	require.NoError(t, err)

	resp, err := e.Recommend(context.Background(), Query{UserID: "u_1", TimeOfDay: "dinner", Cart: []string{"m_biryani"}, TopK: 20}, r10)
	require.NoError(t, err)
	got := recIDs(resp)
	assert.NotContains(t, got, "s_salan")
	assert.Contains(t, got, "b_coke", "checker errors keep the item")

	e2, err := NewEngine(cat, cfg, sampleDefaultModel(t), nil, NewExcludeItems([]string{" s_raita ", ""}))
	require.NoError(t, err)
	resp, err = e2.Recommend(context.Background(), Query{UserID: "u_1", TimeOfDay: "dinner", Cart: []string{"m_biryani"}, TopK: 20}, r10)
	require.NoError(t, err)
	assert.NotContains(t, recIDs(resp), "s_raita")
}

func TestEngine_ModelValidationAndSwap(t *testing.T) {
	cat := catalog.Sample()

	_, err := NewEngine(cat, DefaultConfig(), ranker.NewLogisticModel([]float64{1}, 0), nil, nil)
	require.ErrorIs(t, err, ranker.ErrDimensionMismatch)
	_, err = NewEngine(cat, DefaultConfig(), nil, nil, nil)
	require.Error(t, err)
	_, err = NewEngine(nil, DefaultConfig(), sampleDefaultModel(t), nil, nil)
	require.Error(t, err)

	e := newTestEngine(t, cat, sampleDefaultModel(t), false)
	require.ErrorIs(t, e.SwapModel(ranker.NewLogisticModel(make([]float64, 3), 0)), ranker.ErrDimensionMismatch)
	assert.Same(t, sampleDefaultModel(t), e.Model())

	next := weightedModel(ranker.FeatPopularity, 2, 0)
	require.NoError(t, e.SwapModel(next))
	assert.Same(t, next, e.Model())
}

func TestEngine_ConcurrentRecommendAndSwap(t *testing.T) {
	cat := catalog.Sample()
	e := newTestEngine(t, cat, sampleDefaultModel(t), true)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if g == 0 && i%10 == 0 {
					_ = e.SwapModel(weightedModel(ranker.FeatPopularity, float64(i), 0))
				}
				_, err := e.Recommend(context.Background(), Query{UserID: "u_1", TimeOfDay: "dinner", Cart: []string{"m_biryani"}, TopK: 2}, r10)
				assert.NoError(t, err)
			}
		}(g)
	}
	wg.Wait()

	total := 0
	for _, n := range e.Bandit().Snapshot().Impressions {
		total += n
	}
	assert.Equal(t, 8*50*2, total)
}
