package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cartCompanion/business/recommend"
	"cartCompanion/business/retrain"
	"cartCompanion/domain"

	"gorm.io/gorm"
)

type feedbackEventRow struct {
	ID                uint      `gorm:"column:id;primaryKey;autoIncrement"`
	EventID           string    `gorm:"column:event_id;size:36;index"`
	UserID            string    `gorm:"column:user_id;not null"`
	RestaurantID      string    `gorm:"column:restaurant_id;not null"`
	RestaurantCuisine string    `gorm:"column:restaurant_cuisine"`
	City              string    `gorm:"column:city;not null"`
	TimeOfDay         string    `gorm:"column:time_of_day;not null"`
	CartItemIDs       string    `gorm:"column:cart_item_ids;not null"`
	ItemID            string    `gorm:"column:item_id;not null"`
	Reason            string    `gorm:"column:reason;not null"`
	Accepted          bool      `gorm:"column:accepted;not null"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (feedbackEventRow) TableName() string {
	return "feedback_events"
}

// FeedbackRepository is the append-only event log. It works on any gorm
// dialect; production uses postgres and local runs use sqlite.
type FeedbackRepository struct {
	DB *gorm.DB
}

var (
	_ recommend.EventLog  = (*FeedbackRepository)(nil)
	_ retrain.EventReader = (*FeedbackRepository)(nil)
)

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{DB: db}
}

func (r *FeedbackRepository) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(&feedbackEventRow{}); err != nil {
		return fmt.Errorf("failed to migrate feedback_events: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) Append(ctx context.Context, event domain.FeedbackEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	row := feedbackEventRow{
		EventID:           event.EventID,
		UserID:            event.UserID,
		RestaurantID:      event.RestaurantID,
		RestaurantCuisine: event.RestaurantCuisine,
		City:              event.City,
		TimeOfDay:         event.TimeOfDay,
		CartItemIDs:       strings.Join(event.CartItemIDs, ","),
		ItemID:            event.ItemID,
		Reason:            event.Reason,
		Accepted:          event.Accepted,
		CreatedAt:         createdAt.UTC(),
	}

	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save feedback event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (r *FeedbackRepository) Recent(ctx context.Context, limit int) ([]domain.FeedbackEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		return []domain.FeedbackEvent{}, nil
	}

	var rows []feedbackEventRow
	err := r.DB.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback events: %w", err)
	}

	events := make([]domain.FeedbackEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, domain.FeedbackEvent{
			ID:                row.ID,
			EventID:           row.EventID,
			UserID:            row.UserID,
			RestaurantID:      row.RestaurantID,
			RestaurantCuisine: row.RestaurantCuisine,
			City:              row.City,
			TimeOfDay:         row.TimeOfDay,
			CartItemIDs:       splitIDs(row.CartItemIDs),
			ItemID:            row.ItemID,
			Reason:            row.Reason,
			Accepted:          row.Accepted,
			CreatedAt:         row.CreatedAt,
		})
	}
	return events, nil
}

func splitIDs(csv string) []string {
	if csv == "" {
		return []string{}
	}
	return strings.Split(csv, ",")
}
