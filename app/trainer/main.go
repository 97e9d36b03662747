package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"cartCompanion/business/catalog"
	"cartCompanion/business/ranker"
	"cartCompanion/business/recommend"
	"cartCompanion/business/retrain"
	"cartCompanion/domain"
	psqlRepo "cartCompanion/internal/repository/postgres"
	"cartCompanion/internal/repository/modelstore"
	"cartCompanion/pkg/config"
	"cartCompanion/pkg/database"
	"cartCompanion/pkg/logger"
)

const (
	syntheticSamples = 900
	syntheticSeed    = 42
	trainFraction    = 0.8
)

func main() {
	mode := flag.String("mode", "synthetic", "synthetic | logs | demo")
	out := flag.String("out", "", "model output path (default MODEL_PATH)")
	modelPath := flag.String("model", "", "model to load in demo mode (default: train from synthetic data)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.App.Environment)

	if *out == "" {
		*out = cfg.Model.Path
	}

	ctx := context.Background()
	store := modelstore.NewFileStore()

	switch *mode {
	case "synthetic":
		err = trainSynthetic(os.Stdout, store, *out)
	case "logs":
		err = trainFromLogs(ctx, os.Stdout, cfg, store, *out)
	case "demo":
		err = runDemo(ctx, os.Stdout, store, *modelPath)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		logger.Fatal("trainer failed", "mode", *mode, "error", err)
	}
}

func trainSynthetic(w io.Writer, store *modelstore.FileStore, out string) error {
	cat := catalog.Sample()
	xs, ys, err := ranker.BuildSyntheticRows(cat, syntheticSamples, syntheticSeed)
	if err != nil {
		return err
	}

	split := int(trainFraction * float64(len(xs)))
	xTrain, xTest := xs[:split], xs[split:]
	yTrain, yTest := ys[:split], ys[split:]

	model, err := ranker.TrainLogisticSGD(xTrain, yTrain, ranker.TrainConfig{
		Epochs:       350,
		LearningRate: 0.06,
		L2:           1e-4,
		Seed:         syntheticSeed,
	})
	if err != nil {
		return err
	}

	probs := make([]float64, len(xTest))
	for i, x := range xTest {
		probs[i] = model.PredictProba(x)
	}

	if err := store.Save(model, out); err != nil {
		return err
	}

	fmt.Fprintf(w, "Trained rows: %d\n", len(xTrain))
	fmt.Fprintf(w, "Test rows: %d\n", len(xTest))
	fmt.Fprintf(w, "Test AUC: %.4f\n", ranker.AUC(yTest, probs))
	fmt.Fprintf(w, "Saved model: %s\n", out)
	return nil
}

func trainFromLogs(ctx context.Context, w io.Writer, cfg *config.Config, store *modelstore.FileStore, out string) error {
	if cfg.Database.Driver == config.EventLogMemory {
		return errors.New("logs mode needs EVENT_LOG_DRIVER=postgres or sqlite")
	}
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	events := psqlRepo.NewFeedbackRepository(db)
	if err := events.Migrate(ctx); err != nil {
		return err
	}

	cat := catalog.Sample()
	if cfg.Database.CatalogSource == config.CatalogDB {
		cat, err = catalog.Load(ctx, psqlRepo.NewCatalogRepository(db))
		if err != nil {
			return err
		}
	}

	res, err := retrain.NewRetrainer(cat, events, retrain.DefaultConfig()).Run(ctx)
	if err != nil {
		return err
	}
	if err := store.Save(res.Model, out); err != nil {
		return err
	}

	fmt.Fprintf(w, "Fetched events: %d\n", res.Fetched)
	fmt.Fprintf(w, "Training rows: %d (positives %d, negatives %d)\n", res.Used, res.Positives, res.Negatives)
	fmt.Fprintf(w, "Saved retrained model: %s\n", out)
	return nil
}

// runDemo fills a cart step by step and accepts one suggestion in between.
func runDemo(ctx context.Context, w io.Writer, store *modelstore.FileStore, modelPath string) error {
	cat := catalog.Sample()

	var (
		model *ranker.LogisticModel
		err   error
	)
	if modelPath != "" {
		model, err = store.Load(modelPath)
	} else {
		model, err = ranker.TrainDefaultModel(cat)
	}
	if err != nil {
		return err
	}

	cfg := recommend.DefaultConfig()
	cfg.TopK = 4
	engine, err := recommend.NewEngine(cat, cfg, model, nil, nil)
	if err != nil {
		return err
	}

	rc := domain.RestaurantContext{
		RestaurantID: "r_10",
		Cuisine:      "hyderabadi",
		PriceLevel:   "mid",
		City:         "Hyderabad",
	}
	steps := []struct {
		title string
		cart  []string
	}{
		{"Cart: [Biryani]", []string{"m_biryani"}},
		{"Cart: [Biryani, Salan]", []string{"m_biryani", "s_salan"}},
		{"Cart: [Biryani, Salan, Gulab Jamun]", []string{"m_biryani", "s_salan", "d_gulab_jamun"}},
	}

	for i, step := range steps {
		resp, err := engine.Recommend(ctx, recommend.Query{
			UserID:    "u_1",
			TimeOfDay: "dinner",
			Cart:      step.cart,
			TopK:      4,
		}, rc)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\n%s\n", step.title)
		fmt.Fprintf(w, "Latency: %d ms\n", resp.LatencyMS)
		for j, rec := range resp.Recommendations {
			fmt.Fprintf(w, "%d. %s (%s) score=%v reason=%s\n", j+1, rec.Name, rec.ItemID, rec.Score, rec.Reason)
		}

		if i == 0 {
			engine.LogAccept("s_salan")
		}
	}
	return nil
}
