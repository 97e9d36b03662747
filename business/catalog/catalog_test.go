//go:build !integration

package catalog

import (
	"context"
	"errors"
	"testing"

	"cartCompanion/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooccurrenceTable_Directional(t *testing.T) {
	tbl := NewCooccurrenceTable([]Affinity{
		{Source: "a", Candidate: "b", Strength: 0.7},
		{Source: "c", Candidate: "b", Strength: 0.9},
	})

	assert.Equal(t, 0.7, tbl.Strength("a", "b"))
	assert.Equal(t, 0.0, tbl.Strength("b", "a"))
	assert.Equal(t, 0.9, tbl.MaxFrom([]string{"a", "c"}, "b"))
	assert.Equal(t, 0.0, tbl.MaxFrom([]string{"x"}, "b"))
	assert.Equal(t, 2, tbl.Len())
}

func TestCooccurrenceTable_RepeatedPairKeepsLast(t *testing.T) {
	tbl := NewCooccurrenceTable([]Affinity{
		{Source: "a", Candidate: "b", Strength: 0.2},
		{Source: "a", Candidate: "c", Strength: 0.3},
		{Source: "a", Candidate: "b", Strength: 0.6},
	})

	assert.Equal(t, 0.6, tbl.Strength("a", "b"))
	assert.Equal(t, []string{"b", "c"}, tbl.Targets("a"))
	assert.Equal(t, []Affinity{
		{Source: "a", Candidate: "b", Strength: 0.6},
		{Source: "a", Candidate: "c", Strength: 0.3},
	}, tbl.Pairs())
}

func TestCooccurrenceTable_NilIsEmpty(t *testing.T) {
	var tbl *CooccurrenceTable
	assert.Equal(t, 0.0, tbl.Strength("a", "b"))
	assert.Nil(t, tbl.Targets("a"))
	assert.Equal(t, 0, tbl.Len())
}

func TestNew_RejectsDuplicates(t *testing.T) {
	items := []domain.Item{{ID: "x"}, {ID: "x"}}
	_, err := New(items, nil, nil, nil)
	require.Error(t, err)

	users := []domain.UserProfile{domain.NewUserProfile("u", false, 1), domain.NewUserProfile("u", true, 2)}
	_, err = New(nil, users, nil, nil)
	require.Error(t, err)
}

func TestCatalog_CartHelpersSkipUnknown(t *testing.T) {
	c := Sample()

	cart := []string{"m_biryani", "ghost", "s_salan"}
	assert.Equal(t, 350, c.CartTotal(cart))
	assert.Equal(t, []string{"m_biryani", "s_salan"}, c.KnownItems(cart))

	cats := c.CartCategories(cart)
	assert.Len(t, cats, 2)
	assert.Contains(t, cats, domain.CategoryMain)
	assert.Contains(t, cats, domain.CategorySide)
}

func TestCatalog_LoadOrderAndAdjacency(t *testing.T) {
	c := Sample()

	items := c.Items()
	require.Len(t, items, 9)
	assert.Equal(t, "m_biryani", items[0].ID)
	assert.Equal(t, "u_kebab_platter", items[8].ID)

	assert.Equal(t, []domain.Category{domain.CategorySide}, c.Successors(domain.CategoryMain))
	assert.Empty(t, c.Successors(domain.CategoryBeverage))

	u, ok := c.User("u_2")
	require.True(t, ok)
	assert.True(t, u.VegOnly)
	assert.True(t, u.Prefers("indian"))
	assert.False(t, u.Prefers("hyderabadi"))
}

type failingSource struct {
	*StaticSource
}

func (failingSource) LoadUsers(ctx context.Context) ([]domain.UserProfile, error) {
	return nil, errors.New("boom")
}

func TestLoad(t *testing.T) {
	c, err := Load(context.Background(), NewSampleSource())
	require.NoError(t, err)
	assert.Len(t, c.Users(), 2)
	assert.Equal(t, 7, c.Cooccurrence().Len())

	_, err = Load(context.Background(), failingSource{NewSampleSource()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load users")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Load(ctx, NewSampleSource())
	require.ErrorIs(t, err, context.Canceled)
}
