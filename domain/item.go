package domain

import "sort"

type Category string

const (
	CategoryMain     Category = "main"
	CategorySide     Category = "side"
	CategoryDessert  Category = "dessert"
	CategoryBeverage Category = "beverage"
)

// UniversalCuisine pairs with every restaurant and every cuisine preference.
const UniversalCuisine = "indian"

// Item is an immutable catalog entry. Price is in whole currency units.
type Item struct {
	ID         string   `json:"item_id"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Cuisine    string   `json:"cuisine"`
	Price      int      `json:"price"`
	Veg        bool     `json:"veg"`
	Popularity float64  `json:"popularity"`
}

type UserProfile struct {
	ID                string              `json:"user_id"`
	VegOnly           bool                `json:"veg_only"`
	AvgCartValue      int                 `json:"avg_cart_value"`
	PreferredCuisines map[string]struct{} `json:"-"`
}

func NewUserProfile(id string, vegOnly bool, avgCartValue int, cuisines ...string) UserProfile {
	prefs := make(map[string]struct{}, len(cuisines))
	for _, c := range cuisines {
		prefs[c] = struct{}{}
	}
	return UserProfile{
		ID:                id,
		VegOnly:           vegOnly,
		AvgCartValue:      avgCartValue,
		PreferredCuisines: prefs,
	}
}

func (u UserProfile) Prefers(cuisine string) bool {
	_, ok := u.PreferredCuisines[cuisine]
	return ok
}

// Cuisines returns the preferred cuisines sorted, for storage and display.
func (u UserProfile) Cuisines() []string {
	out := make([]string, 0, len(u.PreferredCuisines))
	for c := range u.PreferredCuisines {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

type RestaurantContext struct {
	RestaurantID string `json:"restaurant_id"`
	Cuisine      string `json:"cuisine"`
	PriceLevel   string `json:"price_level"` // low, mid, high
	City         string `json:"city"`
}
