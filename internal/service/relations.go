package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// relation describes one of the per-user recipe lists.
type relation struct {
	model      func(userID, recipeID uint) interface{}
	msgPresent string
	msgAbsent  string
}

var (
	favorites = relation{
		model: func(userID, recipeID uint) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
		msgPresent: "Recipe is already in favorites.",
		msgAbsent:  "Recipe not found in favorites.",
	}
	shoppingCart = relation{
		model: func(userID, recipeID uint) interface{} {
			return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
		msgPresent: "Recipe is already in the shopping cart.",
		msgAbsent:  "Recipe not found in the shopping cart.",
	}
)

func (s *RecipeService) AddFavorite(ctx context.Context, user *models.User, recipeID uint) (*types.RecipeMini, error) {
	return s.add(ctx, favorites, user, recipeID)
}

func (s *RecipeService) RemoveFavorite(ctx context.Context, user *models.User, recipeID uint) error {
	return s.remove(ctx, favorites, user, recipeID)
}

func (s *RecipeService) AddToCart(ctx context.Context, user *models.User, recipeID uint) (*types.RecipeMini, error) {
	return s.add(ctx, shoppingCart, user, recipeID)
}

func (s *RecipeService) RemoveFromCart(ctx context.Context, user *models.User, recipeID uint) error {
	return s.remove(ctx, shoppingCart, user, recipeID)
}

// add inserts the pair. Both an existing row and a concurrent insert losing
// the unique index report msgPresent.
func (s *RecipeService) add(ctx context.Context, rel relation, user *models.User, recipeID uint) (*types.RecipeMini, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		return nil, notFound(err)
	}

	row := rel.model(user.ID, recipe.ID)
	exists, err := pairExists(db, row, user.ID, recipe.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newValidationError(rel.msgPresent)
	}

	if err := db.Create(row).Error; err != nil {
		if isDuplicate(err) {
			return nil, newValidationError(rel.msgPresent)
		}
		return nil, err
	}

	mini := toMini(&recipe, s.images)
	return &mini, nil
}

func (s *RecipeService) remove(ctx context.Context, rel relation, user *models.User, recipeID uint) error {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		return notFound(err)
	}

	res := db.Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).Delete(rel.model(0, 0))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newValidationError(rel.msgAbsent)
	}
	return nil
}

func pairExists(db *gorm.DB, model interface{}, userID, recipeID uint) (bool, error) {
	var count int64
	err := db.Model(model).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error
	return count > 0, err
}
