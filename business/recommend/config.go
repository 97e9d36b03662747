package recommend

import "cartCompanion/business/bandit"

type Config struct {
	CandidatePoolSize int
	TopK              int

	BanditEnabled bool
	UCBAlpha      float64

	// request defaults
	DefaultCuisine    string
	DefaultPriceLevel string

	// profile synthesized for users missing from the catalog
	UnknownUserCartValue int
}

const (
	defaultCandidatePoolSize    = 50
	defaultTopK                 = 8
	defaultCuisine              = "indian"
	defaultPriceLevel           = "mid"
	defaultUnknownUserCartValue = 300
)

func DefaultConfig() Config {
	return Config{
		CandidatePoolSize:    defaultCandidatePoolSize,
		TopK:                 defaultTopK,
		BanditEnabled:        true,
		UCBAlpha:             bandit.DefaultAlpha,
		DefaultCuisine:       defaultCuisine,
		DefaultPriceLevel:    defaultPriceLevel,
		UnknownUserCartValue: defaultUnknownUserCartValue,
	}
}

// Limits splits the pool between co-occurrence, meal-graph and popularity.
func (c Config) Limits() (cooccurrence, mealGraph, popularity int) {
	return c.CandidatePoolSize / 2, c.CandidatePoolSize / 3, c.CandidatePoolSize / 3
}
