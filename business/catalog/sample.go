package catalog

import "cartCompanion/domain"

// SampleItems is the demo menu used when no catalog source is configured.
func SampleItems() []domain.Item {
	return []domain.Item{
		{ID: "m_biryani", Name: "Chicken Biryani", Category: domain.CategoryMain, Cuisine: "hyderabadi", Price: 280, Veg: false, Popularity: 0.95},
		{ID: "m_paneer_biryani", Name: "Paneer Biryani", Category: domain.CategoryMain, Cuisine: "hyderabadi", Price: 260, Veg: true, Popularity: 0.78},
		{ID: "s_salan", Name: "Mirchi Ka Salan", Category: domain.CategorySide, Cuisine: "hyderabadi", Price: 70, Veg: true, Popularity: 0.80},
		{ID: "s_raita", Name: "Raita", Category: domain.CategorySide, Cuisine: "indian", Price: 60, Veg: true, Popularity: 0.72},
		{ID: "d_gulab_jamun", Name: "Gulab Jamun", Category: domain.CategoryDessert, Cuisine: "indian", Price: 90, Veg: true, Popularity: 0.85},
		{ID: "d_khubani", Name: "Khubani Ka Meetha", Category: domain.CategoryDessert, Cuisine: "hyderabadi", Price: 120, Veg: true, Popularity: 0.67},
		{ID: "b_coke", Name: "Coke", Category: domain.CategoryBeverage, Cuisine: "global", Price: 50, Veg: true, Popularity: 0.88},
		{ID: "b_lassi", Name: "Sweet Lassi", Category: domain.CategoryBeverage, Cuisine: "indian", Price: 80, Veg: true, Popularity: 0.63},
		{ID: "u_kebab_platter", Name: "Kebab Platter", Category: domain.CategoryMain, Cuisine: "mughlai", Price: 350, Veg: false, Popularity: 0.74},
	}
}

func SampleUsers() []domain.UserProfile {
	return []domain.UserProfile{
		domain.NewUserProfile("u_1", false, 320, "hyderabadi", "indian"),
		domain.NewUserProfile("u_2", true, 250, "indian"),
	}
}

func SampleAffinities() []Affinity {
	return []Affinity{
		{Source: "m_biryani", Candidate: "s_salan", Strength: 0.82},
		{Source: "m_biryani", Candidate: "s_raita", Strength: 0.54},
		{Source: "s_salan", Candidate: "d_gulab_jamun", Strength: 0.58},
		{Source: "s_raita", Candidate: "d_gulab_jamun", Strength: 0.46},
		{Source: "d_gulab_jamun", Candidate: "b_coke", Strength: 0.51},
		{Source: "m_paneer_biryani", Candidate: "s_raita", Strength: 0.63},
		{Source: "m_paneer_biryani", Candidate: "d_gulab_jamun", Strength: 0.42},
	}
}

// Sample returns the demo catalog with the default meal progression.
func Sample() *Catalog {
	c, err := New(SampleItems(), SampleUsers(), SampleAffinities(), nil)
	if err != nil {
		panic(err)
	}
	return c
}
