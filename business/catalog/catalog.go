package catalog

import (
	"fmt"

	"cartCompanion/domain"
)

// DefaultAdjacency is the meal progression main -> side -> dessert -> beverage.
func DefaultAdjacency() map[domain.Category][]domain.Category {
	return map[domain.Category][]domain.Category{
		domain.CategoryMain:    {domain.CategorySide},
		domain.CategorySide:    {domain.CategoryDessert},
		domain.CategoryDessert: {domain.CategoryBeverage},
	}
}

// Catalog holds the static lookup tables. It is read-only after New returns
// and safe to share between goroutines.
type Catalog struct {
	items     []domain.Item
	itemIndex map[string]int
	users     map[string]domain.UserProfile
	userIDs   []string
	cooc      *CooccurrenceTable
	adjacency map[domain.Category][]domain.Category
}

// New builds a catalog. Item order is kept as given and is the tie-break order
// for every generator. Duplicate item or user identifiers are rejected.
func New(items []domain.Item, users []domain.UserProfile, affinities []Affinity, adjacency map[domain.Category][]domain.Category) (*Catalog, error) {
	if adjacency == nil {
		adjacency = DefaultAdjacency()
	}
	c := &Catalog{
		items:     make([]domain.Item, 0, len(items)),
		itemIndex: make(map[string]int, len(items)),
		users:     make(map[string]domain.UserProfile, len(users)),
		userIDs:   make([]string, 0, len(users)),
		cooc:      NewCooccurrenceTable(affinities),
		adjacency: adjacency,
	}
	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("catalog item with empty id")
		}
		if _, dup := c.itemIndex[it.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog item %q", it.ID)
		}
		c.itemIndex[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	for _, u := range users {
		if _, dup := c.users[u.ID]; dup {
			return nil, fmt.Errorf("duplicate user profile %q", u.ID)
		}
		c.users[u.ID] = u
		c.userIDs = append(c.userIDs, u.ID)
	}
	return c, nil
}

func (c *Catalog) Item(id string) (domain.Item, bool) {
	i, ok := c.itemIndex[id]
	if !ok {
		return domain.Item{}, false
	}
	return c.items[i], true
}

// Items returns the catalog in load order. Callers must not modify the slice.
func (c *Catalog) Items() []domain.Item {
	return c.items
}

func (c *Catalog) User(id string) (domain.UserProfile, bool) {
	u, ok := c.users[id]
	return u, ok
}

// Users returns profiles in load order.
func (c *Catalog) Users() []domain.UserProfile {
	out := make([]domain.UserProfile, 0, len(c.userIDs))
	for _, id := range c.userIDs {
		out = append(out, c.users[id])
	}
	return out
}

func (c *Catalog) Cooccurrence() *CooccurrenceTable {
	return c.cooc
}

func (c *Catalog) Successors(cat domain.Category) []domain.Category {
	return c.adjacency[cat]
}

// CartCategories returns the set of categories of known cart items.
// Unknown identifiers are ignored.
func (c *Catalog) CartCategories(cart []string) map[domain.Category]struct{} {
	out := make(map[domain.Category]struct{}, len(cart))
	for _, id := range cart {
		if it, ok := c.Item(id); ok {
			out[it.Category] = struct{}{}
		}
	}
	return out
}

// CartTotal sums prices of known cart items.
func (c *Catalog) CartTotal(cart []string) int {
	total := 0
	for _, id := range cart {
		if it, ok := c.Item(id); ok {
			total += it.Price
		}
	}
	return total
}

// KnownItems filters cart down to identifiers present in the catalog, keeping order.
func (c *Catalog) KnownItems(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := c.itemIndex[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
