package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
)

// EmptyShoppingList is the whole document when the cart yields no rows.
const EmptyShoppingList = "Корзина пуста."

// ShoppingItem is one aggregated line of the shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ShoppingList sums the ingredient amounts of every recipe in user's cart,
// grouped by ingredient name and unit.
func (s *RecipeService) ShoppingList(ctx context.Context, user *models.User) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := s.db.WithContext(ctx).
		Table("ingredient_in_recipes").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_in_recipes.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_in_recipes.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = ingredient_in_recipes.recipe_id").
		Where("shopping_carts.user_id = ?", user.ID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return items, nil
}

// RenderShoppingList formats items one per line as "<name>: <unit> <amount>".
func RenderShoppingList(items []ShoppingItem) string {
	if len(items) == 0 {
		return EmptyShoppingList
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%s: %s %d", it.Name, it.MeasurementUnit, it.Amount)
	}
	return strings.Join(lines, "\n")
}

// ShoppingListFilename names the attachment after the user.
func ShoppingListFilename(user *models.User) string {
	return user.Username + "_shopping_cart.txt"
}
