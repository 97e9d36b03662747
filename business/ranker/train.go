package ranker

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrInvalidTrainingData = errors.New("invalid training data for logistic model")

type TrainConfig struct {
	Epochs       int
	LearningRate float64
	L2           float64
	Seed         int64
}

const (
	defaultEpochs       = 250
	defaultLearningRate = 0.08
	defaultL2           = 1e-4
	defaultSeed         = 42
)

func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:       defaultEpochs,
		LearningRate: defaultLearningRate,
		L2:           defaultL2,
		Seed:         defaultSeed,
	}
}

// TrainLogisticSGD fits a logistic regression with per-row SGD and L2 decay.
// Rows are reshuffled every epoch from a generator seeded with cfg.Seed,
// so identical inputs give an identical model.
func TrainLogisticSGD(x [][]float64, y []int, cfg TrainConfig) (*LogisticModel, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, fmt.Errorf("empty batch: %w", ErrInvalidTrainingData)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%d rows, %d labels: %w", len(x), len(y), ErrInvalidTrainingData)
	}
	dim := len(x[0])
	if dim == 0 {
		return nil, fmt.Errorf("zero-width rows: %w", ErrInvalidTrainingData)
	}
	for i := range x {
		if len(x[i]) != dim {
			return nil, fmt.Errorf("row %d has %d features, want %d: %w", i, len(x[i]), dim, ErrInvalidTrainingData)
		}
		if y[i] != 0 && y[i] != 1 {
			return nil, fmt.Errorf("label %d is %d: %w", i, y[i], ErrInvalidTrainingData)
		}
	}
	if cfg.Epochs <= 0 || cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("epochs=%d lr=%v: %w", cfg.Epochs, cfg.LearningRate, ErrInvalidTrainingData)
	}

	w := make([]float64, dim)
	b := 0.0

	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	rnd := rand.New(rand.NewSource(cfg.Seed))

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		rnd.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for _, i := range idx {
			row := x[i]
			z := b
			for j := 0; j < dim; j++ {
				z += w[j] * row[j]
			}
			errv := Sigmoid(z) - float64(y[i])

			for j := 0; j < dim; j++ {
				w[j] -= cfg.LearningRate * (errv*row[j] + cfg.L2*w[j])
			}
			b -= cfg.LearningRate * errv
		}
	}

	return &LogisticModel{Weights: w, Bias: b}, nil
}
