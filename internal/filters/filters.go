// Package filters turns list-endpoint query parameters into gorm scopes.
// Every filter is built from explicit arguments: the query values and the
// requesting user.
package filters

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

const msgWholeNumber = "Enter a whole number."

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// IngredientFilter matches ingredients whose name starts with Name,
// ignoring case.
type IngredientFilter struct {
	Name string
}

func ParseIngredientFilter(q url.Values) IngredientFilter {
	return IngredientFilter{Name: strings.TrimSpace(q.Get("name"))}
}

func (f IngredientFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Name == "" {
		return db
	}
	pattern := likeEscaper.Replace(strings.ToLower(f.Name)) + "%"
	return db.Where(`LOWER(ingredients.name) LIKE ? ESCAPE '\'`, pattern)
}

// RecipeFilter narrows the recipe list. Tags match if the recipe carries any
// of them. The favorite and cart flags only apply to an authenticated viewer.
type RecipeFilter struct {
	Author           *uint
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
	Viewer           *models.User
}

// ParseRecipeFilter reads author, tags, is_favorited and is_in_shopping_cart.
// Malformed numbers are reported as types.FieldErrors.
func ParseRecipeFilter(q url.Values, viewer *models.User) (RecipeFilter, error) {
	f := RecipeFilter{Viewer: viewer}
	errs := types.FieldErrors{}

	if raw := strings.TrimSpace(q.Get("author")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errs.Add("author", msgWholeNumber)
		} else {
			author := uint(id)
			f.Author = &author
		}
	}

	for _, slug := range q["tags"] {
		if slug = strings.TrimSpace(slug); slug != "" {
			f.Tags = append(f.Tags, slug)
		}
	}

	var err error
	if f.IsFavorited, err = parseFlag(q.Get("is_favorited")); err != nil {
		errs.Add("is_favorited", msgWholeNumber)
	}
	if f.IsInShoppingCart, err = parseFlag(q.Get("is_in_shopping_cart")); err != nil {
		errs.Add("is_in_shopping_cart", msgWholeNumber)
	}

	return f, errs.Err()
}

// parseFlag treats any non-zero integer as set.
func parseFlag(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

func (f RecipeFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Author != nil {
		db = db.Where("recipes.author_id = ?", *f.Author)
	}
	if len(f.Tags) > 0 {
		db = db.Where("recipes.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.Tags))
	}
	if f.Viewer == nil {
		return db
	}
	if f.IsFavorited {
		db = db.Where("recipes.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&models.Favorite{}).
				Select("recipe_id").
				Where("user_id = ?", f.Viewer.ID))
	}
	if f.IsInShoppingCart {
		db = db.Where("recipes.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&models.ShoppingCart{}).
				Select("recipe_id").
				Where("user_id = ?", f.Viewer.ID))
	}
	return db
}
