//go:build !integration

package retrain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cartCompanion/business/catalog"
	"cartCompanion/business/ranker"
	"cartCompanion/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	events    []domain.FeedbackEvent
	err       error
	lastLimit int
}

func (f *fakeReader) Recent(ctx context.Context, limit int) ([]domain.FeedbackEvent, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func makeEvents(n int, user, item string) []domain.FeedbackEvent {
	out := make([]domain.FeedbackEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.FeedbackEvent{
			UserID:       user,
			RestaurantID: "r_10",
			City:         "Hyderabad",
			TimeOfDay:    "dinner",
			CartItemIDs:  []string{"m_biryani", "ghost"},
			ItemID:       item,
			Reason:       string(domain.ReasonCoOccurrence),
			Accepted:     i%3 == 0,
		})
	}
	return out
}

func TestBuildRows_SkipsUnknown(t *testing.T) {
	cat := catalog.Sample()
	events := append(makeEvents(3, "u_1", "s_salan"), makeEvents(2, "nobody", "s_salan")...)
	events = append(events, makeEvents(2, "u_1", "gone")...)

	xs, ys := BuildRows(cat, events, "indian")
	require.Len(t, xs, 3)
	assert.Equal(t, []int{1, 0, 0}, ys)

	// ghost in the cart contributes nothing, so the row matches a clean cart
	want := ranker.Build(cat, ranker.Input{
		Cart:      []string{"m_biryani"},
		Candidate: mustItem(t, cat, "s_salan"),
		Reason:    domain.ReasonCoOccurrence,
		User:      mustUser(t, cat, "u_1"),
		Context:   domain.RestaurantContext{RestaurantID: "r_10", Cuisine: "indian", PriceLevel: "mid", City: "Hyderabad"},
		TimeOfDay: "dinner",
	})
	assert.Equal(t, want.Slice(), xs[0])
}

func TestRun(t *testing.T) {
	cat := catalog.Sample()
	events := append(makeEvents(40, "u_1", "s_salan"), makeEvents(40, "u_2", "b_coke")...)
	reader := &fakeReader{events: events}

	cfg := DefaultConfig()
	cfg.Train.Epochs = 30
	res, err := NewRetrainer(cat, reader, cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 50000, reader.lastLimit)
	assert.Equal(t, 80, res.Fetched)
	assert.Equal(t, 80, res.Used)
	assert.Equal(t, res.Used, res.Positives+res.Negatives)
	require.NoError(t, res.Model.Validate(ranker.FeatureDim))
}

func TestRun_NotEnoughRows(t *testing.T) {
	cat := catalog.Sample()

	_, err := NewRetrainer(cat, &fakeReader{events: makeEvents(49, "u_1", "s_salan")}, DefaultConfig()).Run(context.Background())
	require.ErrorIs(t, err, ErrNotEnoughRows)

	// enough raw events, too few usable after dropping unknown users
	events := append(makeEvents(30, "u_1", "s_salan"), makeEvents(30, "nobody", "s_salan")...)
	_, err = NewRetrainer(cat, &fakeReader{events: events}, DefaultConfig()).Run(context.Background())
	require.ErrorIs(t, err, ErrNotEnoughRows)
	assert.Contains(t, err.Error(), "after filtering")
}

func TestRun_ReaderError(t *testing.T) {
	_, err := NewRetrainer(catalog.Sample(), &fakeReader{err: errors.New("db down")}, DefaultConfig()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read feedback events")
}

func mustItem(t *testing.T, cat *catalog.Catalog, id string) domain.Item {
	t.Helper()
	it, ok := cat.Item(id)
	require.True(t, ok, fmt.Sprintf("item %s", id))
	return it
}

func mustUser(t *testing.T, cat *catalog.Catalog, id string) domain.UserProfile {
	t.Helper()
	u, ok := cat.User(id)
	require.True(t, ok, fmt.Sprintf("user %s", id))
	return u
}
