package postgres

import (
	"context"
	"errors"
	"fmt"

	"cartCompanion/business/bandit"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type banditStateRow struct {
	Key       string `gorm:"column:state_key;primaryKey"`
	StateJSON []byte `gorm:"column:state_json"`
}

func (banditStateRow) TableName() string {
	return "bandit_state"
}

type BanditStateRepository struct {
	DB *gorm.DB
}

var _ bandit.StateStore = (*BanditStateRepository)(nil)

func NewBanditStateRepository(db *gorm.DB) *BanditStateRepository {
	return &BanditStateRepository{DB: db}
}

func (r *BanditStateRepository) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(&banditStateRow{}); err != nil {
		return fmt.Errorf("failed to migrate bandit_state: %w", err)
	}
	return nil
}

func (r *BanditStateRepository) GetState(ctx context.Context, key string) (*bandit.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var row banditStateRow
	err := r.DB.WithContext(ctx).First(&row, "state_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query bandit_state: %w", err)
	}

	var state bandit.State
	if err := json.Unmarshal(row.StateJSON, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state_json: %w", err)
	}
	return &state, nil
}

func (r *BanditStateRepository) SaveState(ctx context.Context, key string, state *bandit.State) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	row := banditStateRow{
		Key:       key,
		StateJSON: raw,
	}
	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "state_key"}},
			UpdateAll: true,
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert bandit_state: %w", err)
	}
	return nil
}
