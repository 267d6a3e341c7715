package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosley/fridgechef/internal/db"
)

func newRecipeStore(t *testing.T) *RecipeStore {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return NewRecipeStore(d)
}

func TestRecipeStoreCreateAndGet(t *testing.T) {
	s := newRecipeStore(t)
	ctx := context.Background()

	recipe, err := s.Create(ctx, "Tomato Frittata", "Whisk eggs, add tomatoes, cook.")
	require.NoError(t, err)
	assert.NotZero(t, recipe.ID)
	assert.Equal(t, "Tomato Frittata", recipe.Title)
	assert.False(t, recipe.CreatedAt.IsZero())

	got, err := s.GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, recipe.Body, got.Body)
}

func TestRecipeStoreGetMissing(t *testing.T) {
	s := newRecipeStore(t)

	got, err := s.GetByID(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecipeStoreSearch(t *testing.T) {
	s := newRecipeStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "Tomato Frittata", "Eggs and tomatoes.")
	require.NoError(t, err)
	_, err = s.Create(ctx, "Banana Bread", "Mash bananas into batter.")
	require.NoError(t, err)

	results, err := s.Search(ctx, "tomato")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Tomato Frittata", results[0].Title)

	// Body text is searched too.
	results, err = s.Search(ctx, "batter")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRecipeStoreListAndDelete(t *testing.T) {
	s := newRecipeStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, "One", "body")
	require.NoError(t, err)
	_, err = s.Create(ctx, "Two", "body")
	require.NoError(t, err)

	recipes, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recipes, 2)

	require.NoError(t, s.Delete(ctx, first.ID))

	recipes, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recipes, 1)

	assert.Error(t, s.Delete(ctx, first.ID))
}
