package service

import (
	"context"

	"github.com/gosimple/slug"
	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

const msgSlugTaken = "Tag with this slug already exists."

// TagService manages tags. Lists are not paginated.
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := s.db.WithContext(ctx).Order("name, id").Find(&tags).Error
	return tags, err
}

func (s *TagService) Get(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

// Create stores a tag, deriving the slug from the name when it is empty.
func (s *TagService) Create(ctx context.Context, req *types.TagRequest) (*models.Tag, error) {
	tag := models.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug}
	if tag.Slug == "" {
		tag.Slug = slug.Make(req.Name)
		if tag.Slug == "" {
			return nil, types.FieldErrors{"slug": {"Could not derive a slug from the name."}}
		}
	}

	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if isDuplicate(err) {
			return nil, types.FieldErrors{"slug": {msgSlugTaken}}
		}
		return nil, err
	}
	return &tag, nil
}

func (s *TagService) Update(ctx context.Context, id uint, req *types.TagUpdateRequest) (*models.Tag, error) {
	tag, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if len(updates) == 0 {
		return tag, nil
	}

	if err := s.db.WithContext(ctx).Model(tag).Updates(updates).Error; err != nil {
		if isDuplicate(err) {
			return nil, types.FieldErrors{"slug": {msgSlugTaken}}
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *TagService) Delete(ctx context.Context, id uint) error {
	tag, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(tag).Error
}

// IngredientService manages ingredients. Lists are not paginated.
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

func (s *IngredientService) List(ctx context.Context, f filters.IngredientFilter) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	err := f.Apply(s.db.WithContext(ctx).Model(&models.Ingredient{})).
		Order("name, id").
		Find(&ingredients).Error
	return ingredients, err
}

func (s *IngredientService) Get(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ing, nil
}

func (s *IngredientService) Create(ctx context.Context, req *types.IngredientRequest) (*models.Ingredient, error) {
	ing := models.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := s.db.WithContext(ctx).Create(&ing).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

func (s *IngredientService) Update(ctx context.Context, id uint, req *types.IngredientUpdateRequest) (*models.Ingredient, error) {
	ing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.MeasurementUnit != nil {
		updates["measurement_unit"] = *req.MeasurementUnit
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(ing).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *IngredientService) Delete(ctx context.Context, id uint) error {
	ing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(ing).Error
}

// BulkCreate inserts ingredients in one transaction, skipping rows that exist
// with the same name and unit. It returns how many rows were inserted.
func (s *IngredientService) BulkCreate(ctx context.Context, items []models.Ingredient) (int, error) {
	db := s.db.WithContext(ctx)
	inserted := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range items {
			var count int64
			if err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", items[i].Name, items[i].MeasurementUnit).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	return inserted, err
}
