package domain

type Reason string

const (
	ReasonCoOccurrence   Reason = "co_occurrence"
	ReasonMealCompletion Reason = "meal_completion"
	ReasonPopularity     Reason = "popularity"
)

// Candidate is an item proposed by a generator, before scoring.
type Candidate struct {
	ItemID string
	Reason Reason
}

type RecommendationRequest struct {
	UserID       string   `json:"user_id" validate:"required"`
	RestaurantID string   `json:"restaurant_id" validate:"required"`
	City         string   `json:"city" validate:"required"`
	TimeOfDay    string   `json:"time_of_day" validate:"required"`
	CartItemIDs  []string `json:"cart_item_ids" validate:"required"`

	TopK                 *int   `json:"top_k,omitempty"`
	RestaurantCuisine    string `json:"restaurant_cuisine,omitempty"`
	RestaurantPriceLevel string `json:"restaurant_price_level,omitempty"`
}

type RecommendationItem struct {
	ItemID string  `json:"item_id"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason Reason  `json:"reason"`
}

type RecommendationResponse struct {
	Recommendations []RecommendationItem `json:"recommendations"`
	LatencyMS       int64                `json:"latency_ms"`
}

type AcceptRequest struct {
	UserID       string   `json:"user_id" validate:"required"`
	RestaurantID string   `json:"restaurant_id" validate:"required"`
	City         string   `json:"city" validate:"required"`
	TimeOfDay    string   `json:"time_of_day" validate:"required"`
	CartItemIDs  []string `json:"cart_item_ids" validate:"required"`
	ItemID       string   `json:"item_id" validate:"required"`

	Reason            string `json:"reason,omitempty"`
	RestaurantCuisine string `json:"restaurant_cuisine,omitempty"`
}

type DebugRecommendation struct {
	ItemID      string    `json:"item_id"`
	Reason      Reason    `json:"reason"`
	ModelScore  float64   `json:"model_score"`  // sigmoid(b + w·x)
	BanditBoost float64   `json:"bandit_boost"` // 0 when exploration is disabled
	FinalScore  float64   `json:"final_score"`  // model_score + bandit_boost
	Features    []float64 `json:"features"`
}
