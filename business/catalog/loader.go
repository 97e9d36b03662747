package catalog

import (
	"context"
	"fmt"

	"cartCompanion/domain"
	"cartCompanion/pkg/logger"
)

// Source supplies the static tables at startup.
type Source interface {
	LoadItems(ctx context.Context) ([]domain.Item, error)
	LoadUsers(ctx context.Context) ([]domain.UserProfile, error)
	LoadAffinities(ctx context.Context) ([]Affinity, error)
}

// Load reads every table from src and builds an immutable Catalog.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	items, err := src.LoadItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	users, err := src.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	affinities, err := src.LoadAffinities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load affinities: %w", err)
	}

	c, err := New(items, users, affinities, nil)
	if err != nil {
		return nil, err
	}

	logger.Info("catalog loaded",
		"items", len(items),
		"users", len(users),
		"affinities", c.Cooccurrence().Len(),
	)
	return c, nil
}

// StaticSource serves fixed slices, used for the built-in sample menu and tests.
type StaticSource struct {
	Items      []domain.Item
	Users      []domain.UserProfile
	Affinities []Affinity
}

var _ Source = (*StaticSource)(nil)

func NewSampleSource() *StaticSource {
	return &StaticSource{
		Items:      SampleItems(),
		Users:      SampleUsers(),
		Affinities: SampleAffinities(),
	}
}

func (s *StaticSource) LoadItems(ctx context.Context) ([]domain.Item, error) {
	return s.Items, nil
}

func (s *StaticSource) LoadUsers(ctx context.Context) ([]domain.UserProfile, error) {
	return s.Users, nil
}

func (s *StaticSource) LoadAffinities(ctx context.Context) ([]Affinity, error) {
	return s.Affinities, nil
}
