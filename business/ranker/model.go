package ranker

import (
	"errors"
	"fmt"
	"math"
)

var ErrDimensionMismatch = errors.New("model dimension mismatch")

// LogisticModel is immutable once built. Training returns a new value.
type LogisticModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func NewLogisticModel(weights []float64, bias float64) *LogisticModel {
	w := make([]float64, len(weights))
	copy(w, weights)
	return &LogisticModel{Weights: w, Bias: bias}
}

// Validate checks the weight count against the feature dimension in use.
func (m *LogisticModel) Validate(dim int) error {
	if m == nil {
		return fmt.Errorf("nil model: %w", ErrDimensionMismatch)
	}
	if dim <= 0 || len(m.Weights) != dim {
		return fmt.Errorf("weights=%d features=%d: %w", len(m.Weights), dim, ErrDimensionMismatch)
	}
	for i, w := range m.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight %d is not finite", i)
		}
	}
	if math.IsNaN(m.Bias) || math.IsInf(m.Bias, 0) {
		return fmt.Errorf("bias is not finite")
	}
	return nil
}

// Logit returns b + w·x over the shared prefix of weights and x.
func (m *LogisticModel) Logit(x []float64) float64 {
	z := m.Bias
	n := len(m.Weights)
	if len(x) < n {
		n = len(x)
	}
	for i := 0; i < n; i++ {
		z += m.Weights[i] * x[i]
	}
	return z
}

func (m *LogisticModel) PredictProba(x []float64) float64 {
	return Sigmoid(m.Logit(x))
}

func (m *LogisticModel) Score(v FeatureVector) float64 {
	return m.PredictProba(v[:])
}

// Sigmoid branches on the sign of z so exp never overflows.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1 + ez)
}
