package domain

import (
	"errors"
	"time"
)

// FeedbackEvent is one impression or acceptance written to the event log.
type FeedbackEvent struct {
	ID                uint      `json:"id"`
	EventID           string    `json:"event_id"`
	UserID            string    `json:"user_id"`
	RestaurantID      string    `json:"restaurant_id"`
	RestaurantCuisine string    `json:"restaurant_cuisine,omitempty"`
	City              string    `json:"city"`
	TimeOfDay         string    `json:"time_of_day"`
	CartItemIDs       []string  `json:"cart_item_ids"`
	ItemID            string    `json:"item_id"`
	Reason            string    `json:"reason"`
	Accepted          bool      `json:"accepted"`
	CreatedAt         time.Time `json:"created_at"`
}

var ErrMissingField = errors.New("missing field")

// MissingFieldError names the first required request field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing field: " + e.Field
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
