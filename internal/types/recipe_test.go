package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func validCreate() *RecipeWriteRequest {
	return &RecipeWriteRequest{
		Ingredients: []IngredientAmount{{ID: 1, Amount: 1}},
		Tags:        []uint{1, 2},
		Image:       &ImageInput{DataURI: "data:image/png;base64,AAAA"},
		Name:        strPtr("Soup"),
		Text:        strPtr("Boil water"),
		CookingTime: intPtr(5),
	}
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var fe FieldErrors
	require.True(t, errors.As(err, &fe), "expected FieldErrors, got %v", err)
	return fe
}

func TestRecipeWriteRequestValidCreate(t *testing.T) {
	assert.NoError(t, validCreate().Validate(OpCreate))
}

func TestRecipeWriteRequestDuplicateTags(t *testing.T) {
	req := validCreate()
	req.Tags = []uint{1, 1, 2}

	fe := fieldErrors(t, req.Validate(OpCreate))
	assert.Contains(t, fe, "tags")

	req.Tags = []uint{1, 2}
	assert.NoError(t, req.Validate(OpCreate))
}

func TestRecipeWriteRequestAmount(t *testing.T) {
	req := validCreate()
	req.Ingredients = []IngredientAmount{{ID: 1, Amount: 0}}

	fe := fieldErrors(t, req.Validate(OpCreate))
	assert.Contains(t, fe, "ingredients")

	req.Ingredients[0].Amount = 1
	assert.NoError(t, req.Validate(OpCreate))
}

func TestRecipeWriteRequestEmptyLists(t *testing.T) {
	req := validCreate()
	req.Ingredients = []IngredientAmount{}
	req.Tags = []uint{}

	fe := fieldErrors(t, req.Validate(OpCreate))
	assert.Equal(t, []string{"Add at least one ingredient."}, fe["ingredients"])
	assert.Equal(t, []string{"Add at least one tag."}, fe["tags"])
}

func TestRecipeWriteRequestCreateRequiresFields(t *testing.T) {
	req := &RecipeWriteRequest{}

	fe := fieldErrors(t, req.Validate(OpCreate))
	for _, field := range []string{"ingredients", "tags", "image", "name", "text", "cooking_time"} {
		assert.Equal(t, []string{MsgRequired}, fe[field], field)
	}
}

func TestRecipeWriteRequestUpdate(t *testing.T) {
	t.Run("partial update", func(t *testing.T) {
		req := &RecipeWriteRequest{
			Ingredients: []IngredientAmount{{ID: 3, Amount: 2}},
			Tags:        []uint{1},
		}
		assert.NoError(t, req.Validate(OpUpdate))
	})

	t.Run("lists still required", func(t *testing.T) {
		req := &RecipeWriteRequest{Name: strPtr("New name")}
		fe := fieldErrors(t, req.Validate(OpUpdate))
		assert.Contains(t, fe, "ingredients")
		assert.Contains(t, fe, "tags")
		assert.NotContains(t, fe, "name")
	})

	t.Run("blank image rejected", func(t *testing.T) {
		req := &RecipeWriteRequest{
			Ingredients: []IngredientAmount{{ID: 3, Amount: 2}},
			Tags:        []uint{1},
			Image:       &ImageInput{},
			CookingTime: intPtr(0),
		}
		fe := fieldErrors(t, req.Validate(OpUpdate))
		assert.Contains(t, fe, "image")
		assert.Contains(t, fe, "cooking_time")
	})
}

func TestFieldErrorsError(t *testing.T) {
	fe := FieldErrors{}
	assert.NoError(t, fe.Err())

	fe.Add("tags", "b")
	fe.Add("name", "a")
	assert.Equal(t, "name: a, tags: b", fe.Error())
}
