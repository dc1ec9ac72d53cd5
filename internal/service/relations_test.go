package service_test

import (
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteToggle(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "author")
	user := testhelpers.CreateUser(t, env.db, "user")
	recipe := testhelpers.CreateRecipe(t, env.db, author, "soup", nil)

	mini, err := env.recipes.AddFavorite(ctx, user, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, mini.ID)
	assert.Equal(t, "soup", mini.Name)
	assert.Equal(t, "/media/"+recipe.Image, mini.Image)
	assert.Equal(t, recipe.CookingTime, mini.CookingTime)

	_, err = env.recipes.AddFavorite(ctx, user, recipe.ID)
	requireValidation(t, err, "Recipe is already in favorites.")

	require.NoError(t, env.recipes.RemoveFavorite(ctx, user, recipe.ID))

	err = env.recipes.RemoveFavorite(ctx, user, recipe.ID)
	requireValidation(t, err, "Recipe not found in favorites.")
}

func TestShoppingCartToggle(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "author")
	user := testhelpers.CreateUser(t, env.db, "user")
	recipe := testhelpers.CreateRecipe(t, env.db, author, "soup", nil)

	err := env.recipes.RemoveFromCart(ctx, user, recipe.ID)
	requireValidation(t, err, "Recipe not found in the shopping cart.")

	_, err = env.recipes.AddToCart(ctx, user, recipe.ID)
	require.NoError(t, err)

	_, err = env.recipes.AddToCart(ctx, user, recipe.ID)
	requireValidation(t, err, "Recipe is already in the shopping cart.")

	// Another user's cart is independent.
	_, err = env.recipes.AddToCart(ctx, author, recipe.ID)
	require.NoError(t, err)
}

func TestToggleUnknownRecipe(t *testing.T) {
	env := newTestEnv(t)
	user := testhelpers.CreateUser(t, env.db, "user")

	_, err := env.recipes.AddFavorite(ctx, user, 404)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, env.recipes.RemoveFromCart(ctx, user, 404), service.ErrNotFound)
}

func TestFavoriteUniqueIndex(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "author")
	recipe := testhelpers.CreateRecipe(t, env.db, author, "soup", nil)

	require.NoError(t, env.db.Create(&models.Favorite{UserID: author.ID, RecipeID: recipe.ID}).Error)
	assert.Error(t, env.db.Create(&models.Favorite{UserID: author.ID, RecipeID: recipe.ID}).Error)
}
