package modelstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cartCompanion/business/ranker"

	"github.com/goccy/go-json"
)

// ErrModelLoad marks a missing, unreadable or corrupt model file. Callers fall
// back to training a default model.
var ErrModelLoad = errors.New("model load failure")

// FileStore keeps a model as {"weights":[...],"bias":b} on disk.
type FileStore struct{}

func NewFileStore() *FileStore {
	return &FileStore{}
}

func (FileStore) Load(path string) (*ranker.LogisticModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", path, ErrModelLoad, err)
	}

	var payload struct {
		Weights []float64 `json:"weights"`
		Bias    *float64  `json:"bias"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", path, ErrModelLoad, err)
	}
	if payload.Weights == nil || payload.Bias == nil {
		return nil, fmt.Errorf("decode %s: weights and bias are required: %w", path, ErrModelLoad)
	}
	return ranker.NewLogisticModel(payload.Weights, *payload.Bias), nil
}

// Save writes through a temp file and rename so readers never see a partial model.
func (FileStore) Save(m *ranker.LogisticModel, path string) error {
	if m == nil {
		return errors.New("nil model")
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename model file: %w", err)
	}
	return nil
}
