package api_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type recipeFixture struct {
	env    *apiEnv
	alice  *models.User
	bob    *models.User
	tag    *models.Tag
	sugar  *models.Ingredient
	flour  *models.Ingredient
	recipe *models.Recipe
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	env := newAPIEnv(t)
	f := &recipeFixture{
		env:   env,
		alice: testhelpers.CreateUser(t, env.db, "alice"),
		bob:   testhelpers.CreateUser(t, env.db, "bob"),
		tag:   testhelpers.CreateTag(t, env.db, "dessert"),
		sugar: testhelpers.CreateIngredient(t, env.db, "sugar", "g"),
		flour: testhelpers.CreateIngredient(t, env.db, "flour", "g"),
	}
	f.recipe = testhelpers.CreateRecipe(t, env.db, f.bob, "pie", []*models.Tag{f.tag},
		testhelpers.Amount{Ingredient: f.sugar, Amount: 100},
		testhelpers.Amount{Ingredient: f.flour, Amount: 300},
	)
	return f
}

func (f *recipeFixture) createBody(t *testing.T) map[string]any {
	return map[string]any{
		"ingredients":  []map[string]any{{"id": f.sugar.ID, "amount": 50}},
		"tags":         []uint{f.tag.ID},
		"image":        testhelpers.PNGDataURI(t),
		"name":         "Cookies",
		"text":         "Bake them.",
		"cooking_time": 25,
	}
}

func TestCreateRecipeJSON(t *testing.T) {
	f := newRecipeFixture(t)

	w := f.env.do(t, http.MethodPost, "/api/recipes/", f.createBody(t), f.alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decode[types.RecipeResponse](t, w)
	assert.Equal(t, "Cookies", got.Name)
	assert.Equal(t, f.alice.ID, got.Author.ID)
	assert.Equal(t, 25, got.CookingTime)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "sugar", got.Ingredients[0].Name)
	assert.Equal(t, 50, got.Ingredients[0].Amount)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "dessert", got.Tags[0].Slug)
	assert.True(t, strings.HasPrefix(got.Image, "/media/recipes/"), got.Image)
	assert.True(t, strings.HasSuffix(got.Image, ".png"), got.Image)

	_, err := os.Stat(filepath.Join(f.env.store.Root(), strings.TrimPrefix(got.Image, "/media/")))
	assert.NoError(t, err)
}

func TestCreateRecipeMultipart(t *testing.T) {
	f := newRecipeFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Bread"))
	require.NoError(t, mw.WriteField("text", "Knead."))
	require.NoError(t, mw.WriteField("cooking_time", "90"))
	require.NoError(t, mw.WriteField("tags", fmt.Sprint(f.tag.ID)))
	require.NoError(t, mw.WriteField("ingredients", fmt.Sprintf(`[{"id": %d, "amount": 500}]`, f.flour.ID)))
	part, err := mw.CreateFormFile("image", "bread.png")
	require.NoError(t, err)
	_, err = part.Write(testhelpers.PNGBytes(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/recipes/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Token "+f.env.token(t, f.alice))
	w := f.env.serve(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decode[types.RecipeResponse](t, w)
	assert.Equal(t, "Bread", got.Name)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, 500, got.Ingredients[0].Amount)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newRecipeFixture(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"no ingredients", func(b map[string]any) { b["ingredients"] = []any{} }, "ingredients"},
		{"zero amount", func(b map[string]any) { b["ingredients"] = []map[string]any{{"id": f.sugar.ID, "amount": 0}} }, "ingredients"},
		{"unknown ingredient", func(b map[string]any) { b["ingredients"] = []map[string]any{{"id": 999, "amount": 1}} }, "ingredients"},
		{"repeated tags", func(b map[string]any) { b["tags"] = []uint{f.tag.ID, f.tag.ID} }, "tags"},
		{"unknown tag", func(b map[string]any) { b["tags"] = []uint{999} }, "tags"},
		{"zero cooking time", func(b map[string]any) { b["cooking_time"] = 0 }, "cooking_time"},
		{"missing image", func(b map[string]any) { delete(b, "image") }, "image"},
		{"not an image", func(b map[string]any) { b["image"] = "data:image/png;base64,aGVsbG8=" }, "image"},
		{"long name", func(b map[string]any) { b["name"] = strings.Repeat("x", 201) }, "name"},
		{"wrong type", func(b map[string]any) { b["cooking_time"] = "soon" }, "cooking_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := f.createBody(t)
			tt.mutate(body)
			w := f.env.do(t, http.MethodPost, "/api/recipes/", body, f.alice)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, decode[fieldErrors](t, w), tt.field)
		})
	}

	w := f.env.do(t, http.MethodPost, "/api/recipes/", f.createBody(t), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListRecipesWithFlags(t *testing.T) {
	f := newRecipeFixture(t)
	other := testhelpers.CreateRecipe(t, f.env.db, f.alice, "soup", nil,
		testhelpers.Amount{Ingredient: f.flour, Amount: 10})

	w := f.env.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite/", f.recipe.ID), nil, f.alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	mini := decode[types.RecipeMini](t, w)
	assert.Equal(t, "pie", mini.Name)

	w = f.env.do(t, http.MethodGet, "/api/recipes/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.RecipeResponse]](t, w)
	assert.EqualValues(t, 2, page.Count)
	for _, r := range page.Results {
		assert.False(t, r.IsFavorited)
	}

	w = f.env.do(t, http.MethodGet, "/api/recipes/?is_favorited=1", nil, f.alice)
	page = decode[types.Page[types.RecipeResponse]](t, w)
	require.Len(t, page.Results, 1)
	assert.Equal(t, f.recipe.ID, page.Results[0].ID)
	assert.True(t, page.Results[0].IsFavorited)

	w = f.env.do(t, http.MethodGet, "/api/recipes/?is_favorited=1", nil, f.bob)
	assert.Empty(t, decode[types.Page[types.RecipeResponse]](t, w).Results)

	w = f.env.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/?author=%d", f.alice.ID), nil, nil)
	page = decode[types.Page[types.RecipeResponse]](t, w)
	require.Len(t, page.Results, 1)
	assert.Equal(t, other.ID, page.Results[0].ID)

	w = f.env.do(t, http.MethodGet, "/api/recipes/?tags=dessert", nil, nil)
	page = decode[types.Page[types.RecipeResponse]](t, w)
	require.Len(t, page.Results, 1)
	assert.Equal(t, f.recipe.ID, page.Results[0].ID)

	w = f.env.do(t, http.MethodGet, "/api/recipes/?author=abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[fieldErrors](t, w), "author")
}

func TestUpdateAndDeleteRecipePermissions(t *testing.T) {
	f := newRecipeFixture(t)
	path := fmt.Sprintf("/api/recipes/%d/", f.recipe.ID)
	patch := map[string]any{
		"ingredients": []map[string]any{{"id": f.flour.ID, "amount": 1}},
		"tags":        []uint{f.tag.ID},
		"name":        "Better pie",
	}

	w := f.env.do(t, http.MethodPatch, path, patch, f.alice)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.env.do(t, http.MethodPatch, path, patch, f.bob)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[types.RecipeResponse](t, w)
	assert.Equal(t, "Better pie", got.Name)
	assert.Equal(t, "Cook pie", got.Text)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "flour", got.Ingredients[0].Name)

	w = f.env.do(t, http.MethodPatch, path, map[string]any{"name": "No lists"}, f.bob)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decode[fieldErrors](t, w)
	assert.Contains(t, errs, "ingredients")
	assert.Contains(t, errs, "tags")

	admin := testhelpers.CreateAdmin(t, f.env.db, "root")
	w = f.env.do(t, http.MethodDelete, path, nil, f.alice)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = f.env.do(t, http.MethodDelete, path, nil, admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.env.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavoriteAndCartToggles(t *testing.T) {
	f := newRecipeFixture(t)

	for _, rel := range []string{"favorite", "shopping_cart"} {
		t.Run(rel, func(t *testing.T) {
			path := fmt.Sprintf("/api/recipes/%d/%s/", f.recipe.ID, rel)

			w := f.env.do(t, http.MethodPost, path, nil, f.alice)
			require.Equal(t, http.StatusCreated, w.Code)

			w = f.env.do(t, http.MethodPost, path, nil, f.alice)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode[map[string]string](t, w), "errors")

			w = f.env.do(t, http.MethodDelete, path, nil, f.alice)
			assert.Equal(t, http.StatusNoContent, w.Code)

			w = f.env.do(t, http.MethodDelete, path, nil, f.alice)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			w = f.env.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/999/%s/", rel), nil, f.alice)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestDownloadShoppingCart(t *testing.T) {
	f := newRecipeFixture(t)
	testhelpers.CreateRecipe(t, f.env.db, f.alice, "cake", nil,
		testhelpers.Amount{Ingredient: f.sugar, Amount: 20})
	cake := models.Recipe{}
	require.NoError(t, f.env.db.Where("name = ?", "cake").First(&cake).Error)

	w := f.env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart/", nil, f.alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.EmptyShoppingList, w.Body.String())

	for _, id := range []uint{f.recipe.ID, cake.ID} {
		w = f.env.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart/", id), nil, f.alice)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = f.env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart/", nil, f.alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=alice_shopping_cart.txt", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "flour: g 300\nsugar: g 120", w.Body.String())

	w = f.env.do(t, http.MethodGet, "/api/recipes/download_shopping_cart/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
