package ranker

import (
	"fmt"
	"math"
	"math/rand"

	"cartCompanion/business/catalog"
	"cartCompanion/domain"
)

const (
	DefaultSyntheticSamples = 500
	DefaultSyntheticSeed    = 123
)

// syntheticContexts are the two restaurants used to simulate traffic.
var syntheticContexts = []domain.RestaurantContext{
	{RestaurantID: "r_10", Cuisine: "hyderabadi", PriceLevel: "mid", City: "Hyderabad"},
	{RestaurantID: "r_20", Cuisine: "indian", PriceLevel: "mid", City: "Bengaluru"},
}

var syntheticTimes = []string{"lunch", "dinner"}

// BuildSyntheticRows simulates sessions against the catalog and labels every
// non-cart item with a Bernoulli draw whose rate grows with affinity,
// meal completion and user preference.
func BuildSyntheticRows(cat *catalog.Catalog, samples int, seed int64) ([][]float64, []int, error) {
	users := cat.Users()
	items := cat.Items()

	var mains []string
	for _, it := range items {
		if it.Category == domain.CategoryMain {
			mains = append(mains, it.ID)
		}
	}
	if len(users) == 0 || len(mains) == 0 || len(items) < 2 {
		return nil, nil, fmt.Errorf("catalog needs users, a main and two items: %w", ErrInvalidTrainingData)
	}

	rnd := rand.New(rand.NewSource(seed))
	var xs [][]float64
	var ys []int

	for s := 0; s < samples; s++ {
		user := users[rnd.Intn(len(users))]
		rc := syntheticContexts[rnd.Intn(len(syntheticContexts))]
		tod := syntheticTimes[rnd.Intn(len(syntheticTimes))]

		cart := []string{mains[rnd.Intn(len(mains))]}
		if rnd.Float64() < 0.35 {
			others := make([]string, 0, len(items)-1)
			for _, it := range items {
				if it.ID != cart[0] {
					others = append(others, it.ID)
				}
			}
			cart = append(cart, others[rnd.Intn(len(others))])
		}

		for _, cand := range items {
			if contains(cart, cand.ID) {
				continue
			}
			co := cat.Cooccurrence().MaxFrom(cart, cand.ID)
			meal := MealGapScore(cat, cart, cand)
			pref := UserPreferenceScore(user, cand)

			p := 0.05 + 0.60*co + 0.25*meal + 0.10*pref
			p = math.Max(0, math.Min(0.95, p))
			label := 0
			if rnd.Float64() < p {
				label = 1
			}

			reason := domain.ReasonPopularity
			if co > 0 {
				reason = domain.ReasonCoOccurrence
			} else if meal > 0 {
				reason = domain.ReasonMealCompletion
			}

			v := Build(cat, Input{
				Cart:      cart,
				Candidate: cand,
				Reason:    reason,
				User:      user,
				Context:   rc,
				TimeOfDay: tod,
			})
			xs = append(xs, v.Slice())
			ys = append(ys, label)
		}
	}
	return xs, ys, nil
}

// TrainDefaultModel is the fallback when no stored model can be loaded.
func TrainDefaultModel(cat *catalog.Catalog) (*LogisticModel, error) {
	xs, ys, err := BuildSyntheticRows(cat, DefaultSyntheticSamples, DefaultSyntheticSeed)
	if err != nil {
		return nil, err
	}
	return TrainLogisticSGD(xs, ys, DefaultTrainConfig())
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
