package postgres

import (
	"context"
	"fmt"
	"strings"

	"cartCompanion/business/catalog"
	"cartCompanion/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type catalogItemRow struct {
	ID         string  `gorm:"column:id;primaryKey"`
	Position   int     `gorm:"column:position;not null;index"`
	Name       string  `gorm:"column:name;not null"`
	Category   string  `gorm:"column:category;not null"`
	Cuisine    string  `gorm:"column:cuisine;not null"`
	Price      int     `gorm:"column:price;not null"`
	Veg        bool    `gorm:"column:veg;not null"`
	Popularity float64 `gorm:"column:popularity;not null"`
}

func (catalogItemRow) TableName() string { return "catalog_items" }

type catalogUserRow struct {
	ID                string `gorm:"column:id;primaryKey"`
	Position          int    `gorm:"column:position;not null"`
	VegOnly           bool   `gorm:"column:veg_only;not null"`
	AvgCartValue      int    `gorm:"column:avg_cart_value;not null"`
	PreferredCuisines string `gorm:"column:preferred_cuisines"`
}

func (catalogUserRow) TableName() string { return "catalog_users" }

type catalogAffinityRow struct {
	SourceItemID    string  `gorm:"column:source_item_id;primaryKey"`
	CandidateItemID string  `gorm:"column:candidate_item_id;primaryKey"`
	Position        int     `gorm:"column:position;not null"`
	Strength        float64 `gorm:"column:strength;not null"`
}

func (catalogAffinityRow) TableName() string { return "catalog_affinities" }

// CatalogRepository stores the static menu, user profile and affinity tables.
type CatalogRepository struct {
	DB *gorm.DB
}

var _ catalog.Source = (*CatalogRepository)(nil)

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(&catalogItemRow{}, &catalogUserRow{}, &catalogAffinityRow{}); err != nil {
		return fmt.Errorf("failed to migrate catalog tables: %w", err)
	}
	return nil
}

// IsEmpty reports whether no items have been stored yet.
func (r *CatalogRepository) IsEmpty(ctx context.Context) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&catalogItemRow{}).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to count catalog items: %w", err)
	}
	return n == 0, nil
}

// Seed upserts all three tables in one transaction. Positions follow slice order.
func (r *CatalogRepository) Seed(ctx context.Context, items []domain.Item, users []domain.UserProfile, affinities []catalog.Affinity) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, it := range items {
			row := catalogItemRow{
				ID:         it.ID,
				Position:   i,
				Name:       it.Name,
				Category:   string(it.Category),
				Cuisine:    it.Cuisine,
				Price:      it.Price,
				Veg:        it.Veg,
				Popularity: it.Popularity,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to upsert catalog item %s: %w", it.ID, err)
			}
		}
		for i, u := range users {
			row := catalogUserRow{
				ID:                u.ID,
				Position:          i,
				VegOnly:           u.VegOnly,
				AvgCartValue:      u.AvgCartValue,
				PreferredCuisines: strings.Join(u.Cuisines(), ","),
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to upsert user profile %s: %w", u.ID, err)
			}
		}
		for i, a := range affinities {
			row := catalogAffinityRow{
				SourceItemID:    a.Source,
				CandidateItemID: a.Candidate,
				Position:        i,
				Strength:        a.Strength,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "source_item_id"}, {Name: "candidate_item_id"}},
				UpdateAll: true,
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to upsert affinity %s->%s: %w", a.Source, a.Candidate, err)
			}
		}
		return nil
	})
}

func (r *CatalogRepository) LoadItems(ctx context.Context) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []catalogItemRow
	if err := r.DB.WithContext(ctx).Order("position ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find catalog items: %w", err)
	}

	items := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.Item{
			ID:         row.ID,
			Name:       row.Name,
			Category:   domain.Category(row.Category),
			Cuisine:    row.Cuisine,
			Price:      row.Price,
			Veg:        row.Veg,
			Popularity: row.Popularity,
		})
	}
	return items, nil
}

func (r *CatalogRepository) LoadUsers(ctx context.Context) ([]domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []catalogUserRow
	if err := r.DB.WithContext(ctx).Order("position ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find user profiles: %w", err)
	}

	users := make([]domain.UserProfile, 0, len(rows))
	for _, row := range rows {
		var cuisines []string
		if row.PreferredCuisines != "" {
			cuisines = strings.Split(row.PreferredCuisines, ",")
		}
		users = append(users, domain.NewUserProfile(row.ID, row.VegOnly, row.AvgCartValue, cuisines...))
	}
	return users, nil
}

func (r *CatalogRepository) LoadAffinities(ctx context.Context) ([]catalog.Affinity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []catalogAffinityRow
	if err := r.DB.WithContext(ctx).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find affinities: %w", err)
	}

	out := make([]catalog.Affinity, 0, len(rows))
	for _, row := range rows {
		out = append(out, catalog.Affinity{
			Source:    row.SourceItemID,
			Candidate: row.CandidateItemID,
			Strength:  row.Strength,
		})
	}
	return out, nil
}
