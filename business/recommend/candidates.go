package recommend

import (
	"sort"

	"cartCompanion/business/catalog"
	"cartCompanion/domain"
)

type scoredItem struct {
	id    string
	score float64
}

// CooccurrenceCandidates ranks items by their strongest affinity from any cart
// item. Items with no affinity are left out.
func CooccurrenceCandidates(cat *catalog.Catalog, cart []string, limit int) []domain.Candidate {
	if limit <= 0 {
		return nil
	}
	inCart := toSet(cart)
	cooc := cat.Cooccurrence()

	var scored []scoredItem
	for _, it := range cat.Items() {
		if _, ok := inCart[it.ID]; ok {
			continue
		}
		if s := cooc.MaxFrom(cart, it.ID); s > 0 {
			scored = append(scored, scoredItem{id: it.ID, score: s})
		}
	}
	return topCandidates(scored, limit, domain.ReasonCoOccurrence)
}

// MealGraphCandidates proposes items from categories that follow a cart
// category and are not in the cart yet, most popular first.
func MealGraphCandidates(cat *catalog.Catalog, cart []string, limit int) []domain.Candidate {
	if limit <= 0 {
		return nil
	}
	present := cat.CartCategories(cart)
	targets := make(map[domain.Category]struct{})
	for c := range present {
		for _, next := range cat.Successors(c) {
			if _, ok := present[next]; !ok {
				targets[next] = struct{}{}
			}
		}
	}
	if len(targets) == 0 {
		return nil
	}

	inCart := toSet(cart)
	var scored []scoredItem
	for _, it := range cat.Items() {
		if _, ok := targets[it.Category]; !ok {
			continue
		}
		if _, ok := inCart[it.ID]; ok {
			continue
		}
		scored = append(scored, scoredItem{id: it.ID, score: it.Popularity})
	}
	return topCandidates(scored, limit, domain.ReasonMealCompletion)
}

// PopularityCandidates is the fallback: every item outside the cart by popularity.
func PopularityCandidates(cat *catalog.Catalog, cart []string, limit int) []domain.Candidate {
	if limit <= 0 {
		return nil
	}
	inCart := toSet(cart)
	var scored []scoredItem
	for _, it := range cat.Items() {
		if _, ok := inCart[it.ID]; ok {
			continue
		}
		scored = append(scored, scoredItem{id: it.ID, score: it.Popularity})
	}
	return topCandidates(scored, limit, domain.ReasonPopularity)
}

// MergeCandidates keeps the first occurrence of each item across buckets.
func MergeCandidates(buckets ...[]domain.Candidate) []domain.Candidate {
	seen := make(map[string]struct{})
	var out []domain.Candidate
	for _, bucket := range buckets {
		for _, c := range bucket {
			if _, ok := seen[c.ItemID]; ok {
				continue
			}
			seen[c.ItemID] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// topCandidates sorts by score descending. The sort is stable so equal scores
// keep catalog order.
func topCandidates(scored []scoredItem, limit int, reason domain.Reason) []domain.Candidate {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]domain.Candidate, 0, len(scored))
	for _, s := range scored {
		out = append(out, domain.Candidate{ItemID: s.id, Reason: reason})
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
