package models

import (
	"time"
)

const MaxRecipeNameLength = 200

// Recipe is owned by its author and removed together with it.
type Recipe struct {
	ID                uint                 `gorm:"primaryKey" json:"id"`
	AuthorID          uint                 `gorm:"not null;index" json:"-"`
	Author            User                 `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	Name              string               `gorm:"size:200;not null" json:"name"`
	Image             string               `gorm:"size:255;not null" json:"image"`
	Text              string               `gorm:"type:text;not null" json:"text"`
	CookingTime       int                  `gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1" json:"cooking_time"`
	PubDate           time.Time            `gorm:"not null;index;autoCreateTime" json:"-"`
	Tags              []Tag                `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	IngredientAmounts []IngredientInRecipe `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// IngredientInRecipe records how much of an ingredient a recipe uses.
// A recipe lists an ingredient at most once.
type IngredientInRecipe struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index" json:"-"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Amount       int        `gorm:"not null;check:chk_ingredient_amount,amount >= 1" json:"amount"`
}

func (IngredientInRecipe) TableName() string {
	return "ingredient_in_recipes"
}

type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"-"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type ShoppingCart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"-"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index" json:"-"`
	Recipe    Recipe    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (ShoppingCart) TableName() string {
	return "shopping_carts"
}

// All lists every table in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&IngredientInRecipe{},
		&Favorite{},
		&ShoppingCart{},
	}
}
