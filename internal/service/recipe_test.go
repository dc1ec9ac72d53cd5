package service_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type recipeFixture struct {
	env    *testEnv
	author *models.User
	other  *models.User
	tags   []*models.Tag
	flour  *models.Ingredient
	sugar  *models.Ingredient
	eggs   *models.Ingredient
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	env := newTestEnv(t)
	return &recipeFixture{
		env:    env,
		author: testhelpers.CreateUser(t, env.db, "author"),
		other:  testhelpers.CreateUser(t, env.db, "other"),
		tags: []*models.Tag{
			testhelpers.CreateTag(t, env.db, "breakfast"),
			testhelpers.CreateTag(t, env.db, "dinner"),
		},
		flour: testhelpers.CreateIngredient(t, env.db, "flour", "g"),
		sugar: testhelpers.CreateIngredient(t, env.db, "sugar", "g"),
		eggs:  testhelpers.CreateIngredient(t, env.db, "eggs", "pcs"),
	}
}

func (f *recipeFixture) createRequest(t *testing.T) *types.RecipeWriteRequest {
	return &types.RecipeWriteRequest{
		Ingredients: []types.IngredientAmount{{ID: f.flour.ID, Amount: 100}, {ID: f.sugar.ID, Amount: 50}},
		Tags:        []uint{f.tags[0].ID, f.tags[1].ID},
		Image:       &types.ImageInput{DataURI: testhelpers.PNGDataURI(t)},
		Name:        ptr("Pancakes"),
		Text:        ptr("Mix and fry."),
		CookingTime: ptr(15),
	}
}

type amountRow struct {
	IngredientID uint
	Amount       int
}

func amounts(t *testing.T, f *recipeFixture, recipeID uint) []amountRow {
	var rows []amountRow
	require.NoError(t, f.env.db.Model(&models.IngredientInRecipe{}).
		Where("recipe_id = ?", recipeID).Order("ingredient_id").
		Select("ingredient_id, amount").Scan(&rows).Error)
	return rows
}

func TestCreateRecipe(t *testing.T) {
	f := newRecipeFixture(t)

	resp, err := f.env.recipes.Create(ctx, f.author, f.createRequest(t))
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", resp.Name)
	assert.Equal(t, 15, resp.CookingTime)
	assert.Equal(t, f.author.ID, resp.Author.ID)
	assert.False(t, resp.Author.IsSubscribed)
	assert.False(t, resp.IsFavorited)
	assert.False(t, resp.IsInShoppingCart)
	assert.Len(t, resp.Tags, 2)
	require.Len(t, resp.Ingredients, 2)
	assert.Equal(t, "flour", resp.Ingredients[0].Name)
	assert.Equal(t, 100, resp.Ingredients[0].Amount)

	require.True(t, strings.HasPrefix(resp.Image, "/media/recipes/"))
	assert.True(t, strings.HasSuffix(resp.Image, ".png"))
	_, err = os.Stat(filepath.Join(f.env.store.Root(), strings.TrimPrefix(resp.Image, "/media/")))
	assert.NoError(t, err)

	assert.Equal(t, []amountRow{{f.flour.ID, 100}, {f.sugar.ID, 50}}, amounts(t, f, resp.ID))
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newRecipeFixture(t)

	t.Run("duplicate tags", func(t *testing.T) {
		req := f.createRequest(t)
		req.Tags = []uint{f.tags[0].ID, f.tags[0].ID, f.tags[1].ID}
		_, err := f.env.recipes.Create(ctx, f.author, req)
		requireFieldError(t, err, "tags")
	})

	t.Run("zero amount", func(t *testing.T) {
		req := f.createRequest(t)
		req.Ingredients[0].Amount = 0
		_, err := f.env.recipes.Create(ctx, f.author, req)
		requireFieldError(t, err, "ingredients")
	})

	t.Run("unknown tag", func(t *testing.T) {
		req := f.createRequest(t)
		req.Tags = []uint{9999}
		_, err := f.env.recipes.Create(ctx, f.author, req)
		requireFieldError(t, err, "tags")
	})

	t.Run("unknown ingredient", func(t *testing.T) {
		req := f.createRequest(t)
		req.Ingredients = []types.IngredientAmount{{ID: 9999, Amount: 1}}
		_, err := f.env.recipes.Create(ctx, f.author, req)
		requireFieldError(t, err, "ingredients")
	})

	t.Run("not an image", func(t *testing.T) {
		req := f.createRequest(t)
		req.Image = &types.ImageInput{DataURI: "data:image/png;base64,aGVsbG8="}
		_, err := f.env.recipes.Create(ctx, f.author, req)
		requireFieldError(t, err, "image")
	})

	var count int64
	require.NoError(t, f.env.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecipeDuplicateIngredientRollsBack(t *testing.T) {
	f := newRecipeFixture(t)
	req := f.createRequest(t)
	req.Ingredients = []types.IngredientAmount{{ID: f.flour.ID, Amount: 1}, {ID: f.flour.ID, Amount: 2}}

	_, err := f.env.recipes.Create(ctx, f.author, req)
	fe := requireFieldError(t, err, "ingredients")
	assert.Equal(t, []string{"Ingredients must not repeat."}, fe["ingredients"])

	var recipes, links, rows int64
	require.NoError(t, f.env.db.Model(&models.Recipe{}).Count(&recipes).Error)
	require.NoError(t, f.env.db.Table("recipe_tags").Count(&links).Error)
	require.NoError(t, f.env.db.Model(&models.IngredientInRecipe{}).Count(&rows).Error)
	assert.Zero(t, recipes)
	assert.Zero(t, links)
	assert.Zero(t, rows)

	entries, err := os.ReadDir(filepath.Join(f.env.store.Root(), "recipes"))
	if err == nil {
		assert.Empty(t, entries, "stored image should be removed after rollback")
	}
}

func TestUpdateRecipeReplacesIngredients(t *testing.T) {
	f := newRecipeFixture(t)
	created, err := f.env.recipes.Create(ctx, f.author, f.createRequest(t))
	require.NoError(t, err)

	update := &types.RecipeWriteRequest{
		Ingredients: []types.IngredientAmount{{ID: f.eggs.ID, Amount: 3}},
		Tags:        []uint{f.tags[1].ID},
		Name:        ptr("Omelette"),
	}
	resp, err := f.env.recipes.Update(ctx, f.author, created.ID, update)
	require.NoError(t, err)

	assert.Equal(t, "Omelette", resp.Name)
	assert.Equal(t, "Mix and fry.", resp.Text)
	assert.Equal(t, created.Image, resp.Image)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, f.tags[1].ID, resp.Tags[0].ID)
	assert.Equal(t, []amountRow{{f.eggs.ID, 3}}, amounts(t, f, created.ID))
}

func TestUpdateRecipeReplacesImage(t *testing.T) {
	f := newRecipeFixture(t)
	created, err := f.env.recipes.Create(ctx, f.author, f.createRequest(t))
	require.NoError(t, err)

	update := &types.RecipeWriteRequest{
		Ingredients: []types.IngredientAmount{{ID: f.eggs.ID, Amount: 3}},
		Tags:        []uint{f.tags[1].ID},
		Image:       &types.ImageInput{DataURI: testhelpers.PNGDataURI(t)},
	}
	resp, err := f.env.recipes.Update(ctx, f.author, created.ID, update)
	require.NoError(t, err)
	assert.NotEqual(t, created.Image, resp.Image)

	_, err = os.Stat(mediaPath(f.env, created.Image))
	assert.True(t, os.IsNotExist(err), "previous image must be removed")
	_, err = os.Stat(mediaPath(f.env, resp.Image))
	assert.NoError(t, err, "current image must stay in the store")

	got, err := f.env.recipes.Get(ctx, nil, created.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Image, got.Image)
}

func TestCreateRecipeUnknownTagStoresNoImage(t *testing.T) {
	f := newRecipeFixture(t)

	req := f.createRequest(t)
	req.Tags = []uint{f.tags[0].ID, 999}
	_, err := f.env.recipes.Create(ctx, f.author, req)
	requireFieldError(t, err, "tags")

	entries, err := os.ReadDir(filepath.Join(f.env.store.Root(), "recipes"))
	if err == nil {
		assert.Empty(t, entries)
	} else {
		assert.True(t, os.IsNotExist(err))
	}
}

func mediaPath(env *testEnv, url string) string {
	return filepath.Join(env.store.Root(), filepath.FromSlash(strings.TrimPrefix(url, "/media/")))
}

func TestUpdateRecipeFailureKeepsPreviousState(t *testing.T) {
	f := newRecipeFixture(t)
	created, err := f.env.recipes.Create(ctx, f.author, f.createRequest(t))
	require.NoError(t, err)

	update := &types.RecipeWriteRequest{
		Ingredients: []types.IngredientAmount{{ID: f.eggs.ID, Amount: 3}, {ID: f.eggs.ID, Amount: 4}},
		Tags:        []uint{f.tags[1].ID},
		Name:        ptr("Broken"),
	}
	_, err = f.env.recipes.Update(ctx, f.author, created.ID, update)
	requireFieldError(t, err, "ingredients")

	got, err := f.env.recipes.Get(ctx, nil, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", got.Name)
	assert.Len(t, got.Tags, 2)
	assert.Equal(t, []amountRow{{f.flour.ID, 100}, {f.sugar.ID, 50}}, amounts(t, f, created.ID))
}

func TestRecipePermissions(t *testing.T) {
	f := newRecipeFixture(t)
	created, err := f.env.recipes.Create(ctx, f.author, f.createRequest(t))
	require.NoError(t, err)

	update := &types.RecipeWriteRequest{
		Ingredients: []types.IngredientAmount{{ID: f.eggs.ID, Amount: 3}},
		Tags:        []uint{f.tags[1].ID},
	}
	_, err = f.env.recipes.Update(ctx, f.other, created.ID, update)
	assert.ErrorIs(t, err, service.ErrForbidden)
	assert.ErrorIs(t, f.env.recipes.Delete(ctx, f.other, created.ID), service.ErrForbidden)

	admin := testhelpers.CreateAdmin(t, f.env.db, "admin")
	_, err = f.env.recipes.Update(ctx, admin, created.ID, update)
	assert.NoError(t, err)

	_, err = f.env.recipes.Update(ctx, f.author, 9999, update)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteRecipeCascades(t *testing.T) {
	f := newRecipeFixture(t)
	created, err := f.env.recipes.Create(ctx, f.author, f.createRequest(t))
	require.NoError(t, err)
	_, err = f.env.recipes.AddFavorite(ctx, f.other, created.ID)
	require.NoError(t, err)
	_, err = f.env.recipes.AddToCart(ctx, f.other, created.ID)
	require.NoError(t, err)

	require.NoError(t, f.env.recipes.Delete(ctx, f.author, created.ID))

	for _, model := range []interface{}{&models.Recipe{}, &models.IngredientInRecipe{}, &models.Favorite{}, &models.ShoppingCart{}} {
		var count int64
		require.NoError(t, f.env.db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T", model)
	}
	var links int64
	require.NoError(t, f.env.db.Table("recipe_tags").Count(&links).Error)
	assert.Zero(t, links)

	_, err = f.env.recipes.Get(ctx, nil, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteUserCascadesToRecipes(t *testing.T) {
	f := newRecipeFixture(t)
	testhelpers.CreateRecipe(t, f.env.db, f.author, "soup", []*models.Tag{f.tags[0]},
		testhelpers.Amount{Ingredient: f.flour, Amount: 1})

	require.NoError(t, f.env.db.Delete(f.author).Error)

	var recipes, rows int64
	require.NoError(t, f.env.db.Model(&models.Recipe{}).Count(&recipes).Error)
	require.NoError(t, f.env.db.Model(&models.IngredientInRecipe{}).Count(&rows).Error)
	assert.Zero(t, recipes)
	assert.Zero(t, rows)
}

func TestRecipeFlagsAreViewerScoped(t *testing.T) {
	f := newRecipeFixture(t)
	recipe := testhelpers.CreateRecipe(t, f.env.db, f.author, "soup", []*models.Tag{f.tags[0]},
		testhelpers.Amount{Ingredient: f.flour, Amount: 1})
	_, err := f.env.recipes.AddFavorite(ctx, f.other, recipe.ID)
	require.NoError(t, err)
	_, err = f.env.users.Subscribe(ctx, f.other, f.author.ID, 0)
	require.NoError(t, err)

	anon, err := f.env.recipes.Get(ctx, nil, recipe.ID)
	require.NoError(t, err)
	assert.False(t, anon.IsFavorited)
	assert.False(t, anon.IsInShoppingCart)
	assert.False(t, anon.Author.IsSubscribed)

	viewer, err := f.env.recipes.Get(ctx, f.other, recipe.ID)
	require.NoError(t, err)
	assert.True(t, viewer.IsFavorited)
	assert.False(t, viewer.IsInShoppingCart)
	assert.True(t, viewer.Author.IsSubscribed)

	owner, err := f.env.recipes.Get(ctx, f.author, recipe.ID)
	require.NoError(t, err)
	assert.False(t, owner.IsFavorited)
}

func TestListRecipesNewestFirstWithPaging(t *testing.T) {
	f := newRecipeFixture(t)
	for _, name := range []string{"first", "second", "third"} {
		testhelpers.CreateRecipe(t, f.env.db, f.author, name, []*models.Tag{f.tags[0]})
	}

	page, total, err := f.env.recipes.List(ctx, nil, filters.RecipeFilter{}, service.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "third", page[0].Name)
	assert.Equal(t, "second", page[1].Name)

	page, _, err = f.env.recipes.List(ctx, nil, filters.RecipeFilter{}, service.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "first", page[0].Name)
}
