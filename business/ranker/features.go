package ranker

import (
	"math"

	"cartCompanion/business/catalog"
	"cartCompanion/domain"
)

// FeatureDim is the length of every feature vector. Models with a different
// weight count are rejected at load and swap time.
const FeatureDim = 13

// Feature positions. Training and inference both go through Build, so this
// order is the only one that exists.
const (
	FeatCooccurrence = iota
	FeatMealGap
	FeatUserPreference
	FeatBudgetFit
	FeatPopularity
	FeatContext
	FeatIsMain
	FeatIsSide
	FeatIsDessert
	FeatIsBeverage
	FeatReasonCooccurrence
	FeatReasonMeal
	FeatReasonPopularity
)

var FeatureNames = [FeatureDim]string{
	"max_cooccurrence",
	"meal_gap",
	"user_preference",
	"budget_fit",
	"popularity",
	"context",
	"is_main",
	"is_side",
	"is_dessert",
	"is_beverage",
	"reason_co_occurrence",
	"reason_meal_completion",
	"reason_popularity",
}

type FeatureVector [FeatureDim]float64

func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureDim)
	copy(out, v[:])
	return out
}

// Input is everything the feature builder joins for one candidate.
type Input struct {
	Cart      []string
	Candidate domain.Item
	Reason    domain.Reason
	User      domain.UserProfile
	Context   domain.RestaurantContext
	TimeOfDay string
}

// Build computes the feature vector for one candidate. Unknown cart
// identifiers contribute nothing.
func Build(cat *catalog.Catalog, in Input) FeatureVector {
	var v FeatureVector
	cand := in.Candidate

	v[FeatCooccurrence] = cat.Cooccurrence().MaxFrom(in.Cart, cand.ID)
	v[FeatMealGap] = MealGapScore(cat, in.Cart, cand)
	v[FeatUserPreference] = UserPreferenceScore(in.User, cand)
	v[FeatBudgetFit] = BudgetFitScore(in.User, cat.CartTotal(in.Cart), cand)
	v[FeatPopularity] = cand.Popularity
	v[FeatContext] = ContextScore(in.Context, cand, in.TimeOfDay)

	switch cand.Category {
	case domain.CategoryMain:
		v[FeatIsMain] = 1
	case domain.CategorySide:
		v[FeatIsSide] = 1
	case domain.CategoryDessert:
		v[FeatIsDessert] = 1
	case domain.CategoryBeverage:
		v[FeatIsBeverage] = 1
	}

	switch in.Reason {
	case domain.ReasonCoOccurrence:
		v[FeatReasonCooccurrence] = 1
	case domain.ReasonMealCompletion:
		v[FeatReasonMeal] = 1
	case domain.ReasonPopularity:
		v[FeatReasonPopularity] = 1
	}
	return v
}

// MealGapScore is 1.0 when the candidate's category directly follows a cart
// category, 0.5 when it follows one of those successors, else 0.
func MealGapScore(cat *catalog.Catalog, cart []string, cand domain.Item) float64 {
	present := cat.CartCategories(cart)

	next := make(map[domain.Category]struct{})
	for c := range present {
		for _, n := range cat.Successors(c) {
			if n == cand.Category {
				return 1.0
			}
			next[n] = struct{}{}
		}
	}
	for c := range next {
		for _, n := range cat.Successors(c) {
			if n == cand.Category {
				return 0.5
			}
		}
	}
	return 0.0
}

func UserPreferenceScore(user domain.UserProfile, cand domain.Item) float64 {
	if user.VegOnly && !cand.Veg {
		return 0.0
	}
	cuisine := 0.6
	if user.Prefers(cand.Cuisine) || cand.Cuisine == domain.UniversalCuisine {
		cuisine = 1.0
	}
	// the vegetarian factor is 1 from here on
	return cuisine
}

func isAddOn(c domain.Category) bool {
	return c == domain.CategorySide || c == domain.CategoryDessert || c == domain.CategoryBeverage
}

// BudgetFitScore prefers add-ons that keep the cart near the user's usual spend.
func BudgetFitScore(user domain.UserProfile, cartTotal int, cand domain.Item) float64 {
	target := float64(user.AvgCartValue)
	gap := math.Abs(target - float64(cartTotal+cand.Price))
	norm := math.Max(target, 1)
	return math.Max(0, 1-gap/(norm*1.25))
}

func ContextScore(rc domain.RestaurantContext, cand domain.Item, timeOfDay string) float64 {
	score := 0.5
	if cand.Cuisine == rc.Cuisine || cand.Cuisine == domain.UniversalCuisine {
		score += 0.2
	}
	if (timeOfDay == "lunch" || timeOfDay == "dinner") && isAddOn(cand.Category) {
		score += 0.2
	}
	if timeOfDay == "breakfast" && cand.Category == domain.CategoryDessert {
		score -= 0.1
	}
	return math.Min(math.Max(score, 0), 1)
}
