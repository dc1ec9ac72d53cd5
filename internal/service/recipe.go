package service

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const msgDuplicateIngredient = "Ingredients must not repeat."

type RecipeService struct {
	db     *gorm.DB
	images *ImageService
}

func NewRecipeService(db *gorm.DB, images *ImageService) *RecipeService {
	return &RecipeService{db: db, images: images}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name, tags.id") }).
		Preload("IngredientAmounts", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_in_recipes.id") }).
		Preload("IngredientAmounts.Ingredient")
}

// List returns one page of recipes, newest first.
func (s *RecipeService) List(ctx context.Context, viewer *models.User, f filters.RecipeFilter, page PageRequest) ([]types.RecipeResponse, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := f.Apply(db.Model(&models.Recipe{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	if err := preloadRecipe(f.Apply(db.Model(&models.Recipe{}))).
		Order("recipes.pub_date DESC, recipes.id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	out, err := s.toResponses(db, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *RecipeService) Get(ctx context.Context, viewer *models.User, id uint) (*types.RecipeResponse, error) {
	db := s.db.WithContext(ctx)
	recipe, err := s.load(db, id)
	if err != nil {
		return nil, err
	}

	out, err := s.toResponses(db, viewer, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *RecipeService) load(db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRecipe(db).First(&recipe, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

// Create validates req, stores the image and writes the recipe with its tags
// and ingredient amounts in one transaction.
func (s *RecipeService) Create(ctx context.Context, author *models.User, req *types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	if err := req.Validate(types.OpCreate); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	tags, err := loadTags(db, req.Tags)
	if err != nil {
		return nil, err
	}
	if err := checkIngredients(db, req.Ingredients); err != nil {
		return nil, err
	}

	key, err := s.images.Save(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        *req.Name,
		Image:       key,
		Text:        *req.Text,
		CookingTime: *req.CookingTime,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Omit("Tags.*").Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("failed to set tags: %w", err)
		}
		return createIngredientAmounts(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		s.images.Delete(ctx, key)
		return nil, err
	}

	return s.Get(ctx, author, recipe.ID)
}

// Update applies a PATCH. Tags are replaced and the ingredient amounts are
// cleared and rebuilt from the request.
func (s *RecipeService) Update(ctx context.Context, actor *models.User, id uint, req *types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, id).Error; err != nil {
		return nil, notFound(err)
	}
	if !CanModifyRecipe(actor, &recipe) {
		return nil, ErrForbidden
	}
	if err := req.Validate(types.OpUpdate); err != nil {
		return nil, err
	}

	tags, err := loadTags(db, req.Tags)
	if err != nil {
		return nil, err
	}
	if err := checkIngredients(db, req.Ingredients); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}

	oldKey := recipe.Image
	var newKey string
	if req.Image != nil {
		key, err := s.images.Save(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		newKey = key
		updates["image"] = key
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&recipe).Omit("Tags.*").Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("failed to set tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientInRecipe{}).Error; err != nil {
			return err
		}
		return createIngredientAmounts(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		s.images.Delete(ctx, newKey)
		return nil, err
	}

	if newKey != "" {
		s.images.Delete(ctx, oldKey)
	}
	return s.Get(ctx, actor, recipe.ID)
}

func (s *RecipeService) Delete(ctx context.Context, actor *models.User, id uint) error {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, id).Error; err != nil {
		return notFound(err)
	}
	if !CanModifyRecipe(actor, &recipe) {
		return ErrForbidden
	}

	if err := db.Select("Tags").Delete(&recipe).Error; err != nil {
		return err
	}
	s.images.Delete(ctx, recipe.Image)
	return nil
}

// CanModifyRecipe reports whether user may change or delete recipe.
func CanModifyRecipe(user *models.User, recipe *models.Recipe) bool {
	return user != nil && (user.ID == recipe.AuthorID || user.IsSuperuser)
}

// loadTags fetches the requested tags, failing on any unknown id.
func loadTags(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) == len(ids) {
		return tags, nil
	}

	found := make(map[uint]struct{}, len(tags))
	for _, t := range tags {
		found[t.ID] = struct{}{}
	}
	errs := types.FieldErrors{}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			errs.Add("tags", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	return nil, errs
}

func checkIngredients(tx *gorm.DB, items []types.IngredientAmount) error {
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	var existing []uint
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return err
	}
	found := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}

	errs := types.FieldErrors{}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			errs.Add("ingredients", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	return errs.Err()
}

// createIngredientAmounts bulk-inserts the rows. A repeated ingredient id is
// rejected by the unique index and reported against "ingredients".
func createIngredientAmounts(tx *gorm.DB, recipeID uint, items []types.IngredientAmount) error {
	rows := make([]models.IngredientInRecipe, len(items))
	for i, it := range items {
		rows[i] = models.IngredientInRecipe{RecipeID: recipeID, IngredientID: it.ID, Amount: it.Amount}
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		if isDuplicate(err) {
			return types.FieldErrors{"ingredients": {msgDuplicateIngredient}}
		}
		return err
	}
	return nil
}

// toResponses shapes recipes for viewer, resolving is_favorited,
// is_in_shopping_cart and the author's is_subscribed with one query each.
func (s *RecipeService) toResponses(db *gorm.DB, viewer *models.User, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs = append(authorIDs, recipes[i].AuthorID)
	}

	favorited, err := membershipSet(db, &models.Favorite{}, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := membershipSet(db, &models.ShoppingCart{}, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	followed, err := followedSet(db, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		_, fav := favorited[r.ID]
		_, cart := inCart[r.ID]
		_, sub := followed[r.AuthorID]

		ingredients := make([]types.RecipeIngredientResponse, len(r.IngredientAmounts))
		for j, a := range r.IngredientAmounts {
			ingredients[j] = types.RecipeIngredientResponse{
				ID:              a.Ingredient.ID,
				Name:            a.Ingredient.Name,
				MeasurementUnit: a.Ingredient.MeasurementUnit,
				Amount:          a.Amount,
			}
		}
		tags := r.Tags
		if tags == nil {
			tags = []models.Tag{}
		}

		out[i] = types.RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           types.NewUserResponse(&r.Author, sub),
			Ingredients:      ingredients,
			IsFavorited:      fav,
			IsInShoppingCart: cart,
			Name:             r.Name,
			Image:            s.images.URL(r.Image),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return out, nil
}

// membershipSet returns which recipeIDs the viewer has in the favorites or
// cart table selected by model.
func membershipSet(db *gorm.DB, model interface{}, viewer *models.User, recipeIDs []uint) (map[uint]struct{}, error) {
	set := map[uint]struct{}{}
	if viewer == nil || len(recipeIDs) == 0 {
		return set, nil
	}

	var ids []uint
	if err := db.Model(model).
		Where("user_id = ? AND recipe_id IN ?", viewer.ID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
