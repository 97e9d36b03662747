package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cartCompanion/business/recommend"
	"cartCompanion/business/retrain"
	"cartCompanion/domain"
)

// FeedbackRepository keeps events in process memory, for demos and tests.
// When capacity is positive it is a ring buffer that overwrites the oldest
// event once full.
type FeedbackRepository struct {
	mu       sync.RWMutex
	events   []domain.FeedbackEvent
	next     int // slot of the oldest event once the ring is full, else 0
	nextID   uint
	capacity int
}

var (
	_ recommend.EventLog  = (*FeedbackRepository)(nil)
	_ retrain.EventReader = (*FeedbackRepository)(nil)
)

func NewFeedbackRepository(capacity int) *FeedbackRepository {
	return &FeedbackRepository{capacity: capacity}
}

func (r *FeedbackRepository) Append(ctx context.Context, event domain.FeedbackEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	event.ID = r.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	event.CartItemIDs = append([]string(nil), event.CartItemIDs...)
	if r.capacity <= 0 || len(r.events) < r.capacity {
		r.events = append(r.events, event)
		return nil
	}
	r.events[r.next] = event
	r.next = (r.next + 1) % r.capacity
	return nil
}

func (r *FeedbackRepository) Recent(ctx context.Context, limit int) ([]domain.FeedbackEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		return []domain.FeedbackEvent{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.events)
	out := make([]domain.FeedbackEvent, 0, min(limit, n))
	for i := 0; i < n && len(out) < limit; i++ {
		idx := ((r.next-1-i)%n + n) % n
		out = append(out, r.events[idx])
	}
	return out, nil
}

func (r *FeedbackRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
