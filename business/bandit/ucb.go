package bandit

import (
	"math"
	"sync"
)

const (
	DefaultAlpha = 0.25
	// ucbCap bounds the optimism term so one rarely shown item cannot dominate.
	ucbCap = 1.5
)

// UCB keeps per-item impression and accept counters and turns them into an
// additive exploration boost. All methods are safe for concurrent use.
type UCB struct {
	mu          sync.Mutex
	alpha       float64
	impressions map[string]int
	accepts     map[string]int
	total       int
}

func NewUCB(alpha float64) *UCB {
	return &UCB{
		alpha:       alpha,
		impressions: make(map[string]int),
		accepts:     make(map[string]int),
	}
}

func (b *UCB) Alpha() float64 {
	return b.alpha
}

// ScoreBoost returns alpha for unseen items, else alpha*min(r/n + sqrt(2 ln(N+1)/n), 1.5)
// where N is the impression count summed over all items.
func (b *UCB) ScoreBoost(itemID string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.boostLocked(itemID)
}

// Boosts scores several items against one consistent view of the counters.
func (b *UCB) Boosts(itemIDs []string) []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float64, len(itemIDs))
	for i, id := range itemIDs {
		out[i] = b.boostLocked(id)
	}
	return out
}

func (b *UCB) boostLocked(itemID string) float64 {
	n := b.impressions[itemID]
	if n == 0 {
		return b.alpha
	}
	r := b.accepts[itemID]
	rate := float64(r) / float64(n)
	ucb := rate + math.Sqrt(2*math.Log(float64(b.total+1))/float64(n))
	return b.alpha * math.Min(ucb, ucbCap)
}

func (b *UCB) LogImpression(itemID string) {
	b.mu.Lock()
	b.impressions[itemID]++
	b.total++
	b.mu.Unlock()

	ImpressionsTotal.Inc()
}

// LogImpressions records one impression per id under a single lock.
func (b *UCB) LogImpressions(itemIDs []string) {
	if len(itemIDs) == 0 {
		return
	}
	b.mu.Lock()
	for _, id := range itemIDs {
		b.impressions[id]++
		b.total++
	}
	b.mu.Unlock()

	ImpressionsTotal.Add(float64(len(itemIDs)))
}

func (b *UCB) LogAccept(itemID string) {
	b.mu.Lock()
	b.accepts[itemID]++
	b.mu.Unlock()

	AcceptsTotal.Inc()
}

// Counts returns the impression and accept counters for one item.
func (b *UCB) Counts(itemID string) (impressions, accepts int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.impressions[itemID], b.accepts[itemID]
}

// Snapshot copies the counters.
func (b *UCB) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := State{
		Impressions: make(map[string]int, len(b.impressions)),
		Accepts:     make(map[string]int, len(b.accepts)),
	}
	for k, v := range b.impressions {
		s.Impressions[k] = v
	}
	for k, v := range b.accepts {
		s.Accepts[k] = v
	}
	return s
}

// Restore merges s into the counters, keeping the larger value per item so
// counts never go down.
func (b *UCB) Restore(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, v := range s.Impressions {
		if v > b.impressions[k] {
			b.total += v - b.impressions[k]
			b.impressions[k] = v
		}
	}
	for k, v := range s.Accepts {
		if v > b.accepts[k] {
			b.accepts[k] = v
		}
	}
}
