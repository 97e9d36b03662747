package retrain

import (
	"context"
	"errors"
	"fmt"

	"cartCompanion/business/catalog"
	"cartCompanion/business/ranker"
	"cartCompanion/domain"
	"cartCompanion/pkg/logger"
)

var ErrNotEnoughRows = errors.New("not enough feedback rows")

// EventReader is the read side of the feedback log.
type EventReader interface {
	Recent(ctx context.Context, limit int) ([]domain.FeedbackEvent, error)
}

type Config struct {
	Limit          int
	MinRows        int
	DefaultCuisine string
	Train          ranker.TrainConfig
}

func DefaultConfig() Config {
	return Config{
		Limit:          50000,
		MinRows:        50,
		DefaultCuisine: domain.UniversalCuisine,
		Train: ranker.TrainConfig{
			Epochs:       250,
			LearningRate: 0.05,
			L2:           1e-4,
			Seed:         7,
		},
	}
}

// Result summarizes one retraining run.
type Result struct {
	Model     *ranker.LogisticModel
	Fetched   int
	Used      int
	Positives int
	Negatives int
}

type Retrainer struct {
	catalog *catalog.Catalog
	events  EventReader
	cfg     Config
}

func NewRetrainer(cat *catalog.Catalog, events EventReader, cfg Config) *Retrainer {
	return &Retrainer{catalog: cat, events: events, cfg: cfg}
}

// BuildRows turns logged events into training rows through the same feature
// builder used at serving time. Events for unknown items or users are skipped.
func BuildRows(cat *catalog.Catalog, events []domain.FeedbackEvent, defaultCuisine string) ([][]float64, []int) {
	var xs [][]float64
	var ys []int
	for _, ev := range events {
		item, ok := cat.Item(ev.ItemID)
		if !ok {
			continue
		}
		user, ok := cat.User(ev.UserID)
		if !ok {
			continue
		}
		cuisine := ev.RestaurantCuisine
		if cuisine == "" {
			cuisine = defaultCuisine
		}
		rc := domain.RestaurantContext{
			RestaurantID: ev.RestaurantID,
			Cuisine:      cuisine,
			PriceLevel:   "mid",
			City:         ev.City,
		}

		v := ranker.Build(cat, ranker.Input{
			Cart:      cat.KnownItems(ev.CartItemIDs),
			Candidate: item,
			Reason:    domain.Reason(ev.Reason),
			User:      user,
			Context:   rc,
			TimeOfDay: ev.TimeOfDay,
		})
		label := 0
		if ev.Accepted {
			label = 1
		}
		xs = append(xs, v.Slice())
		ys = append(ys, label)
	}
	return xs, ys
}

// Run reads the most recent events and fits a new model. It returns
// ErrNotEnoughRows when the log is too small before or after filtering.
func (r *Retrainer) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	events, err := r.events.Recent(ctx, r.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("read feedback events: %w", err)
	}
	if len(events) < r.cfg.MinRows {
		return nil, fmt.Errorf("%d events, need %d: %w", len(events), r.cfg.MinRows, ErrNotEnoughRows)
	}

	xs, ys := BuildRows(r.catalog, events, r.cfg.DefaultCuisine)
	if len(xs) < r.cfg.MinRows {
		return nil, fmt.Errorf("%d usable rows after filtering, need %d: %w", len(xs), r.cfg.MinRows, ErrNotEnoughRows)
	}

	model, err := ranker.TrainLogisticSGD(xs, ys, r.cfg.Train)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	pos := 0
	for _, y := range ys {
		pos += y
	}
	res := &Result{
		Model:     model,
		Fetched:   len(events),
		Used:      len(ys),
		Positives: pos,
		Negatives: len(ys) - pos,
	}
	logger.Info("model retrained from feedback",
		"fetched", res.Fetched,
		"used", res.Used,
		"positives", res.Positives,
		"negatives", res.Negatives,
	)
	return res, nil
}
