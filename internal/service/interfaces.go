package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, *types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, user *models.User, req *types.SetPasswordRequest) error
}

// IUserService defines the interface for user and subscription operations
type IUserService interface {
	List(ctx context.Context, viewer *models.User, page PageRequest) ([]types.UserResponse, int64, error)
	Get(ctx context.Context, viewer *models.User, id uint) (*types.UserResponse, error)
	Subscribe(ctx context.Context, viewer *models.User, targetID uint, recipesLimit int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, viewer *models.User, targetID uint) error
	Subscriptions(ctx context.Context, viewer *models.User, page PageRequest, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, viewer *models.User, f filters.RecipeFilter, page PageRequest) ([]types.RecipeResponse, int64, error)
	Get(ctx context.Context, viewer *models.User, id uint) (*types.RecipeResponse, error)
	Create(ctx context.Context, author *models.User, req *types.RecipeWriteRequest) (*types.RecipeResponse, error)
	Update(ctx context.Context, actor *models.User, id uint, req *types.RecipeWriteRequest) (*types.RecipeResponse, error)
	Delete(ctx context.Context, actor *models.User, id uint) error
	AddFavorite(ctx context.Context, user *models.User, recipeID uint) (*types.RecipeMini, error)
	RemoveFavorite(ctx context.Context, user *models.User, recipeID uint) error
	AddToCart(ctx context.Context, user *models.User, recipeID uint) (*types.RecipeMini, error)
	RemoveFromCart(ctx context.Context, user *models.User, recipeID uint) error
	ShoppingList(ctx context.Context, user *models.User) ([]ShoppingItem, error)
}

// ITagService defines the interface for tag operations
type ITagService interface {
	List(ctx context.Context) ([]models.Tag, error)
	Get(ctx context.Context, id uint) (*models.Tag, error)
	Create(ctx context.Context, req *types.TagRequest) (*models.Tag, error)
	Update(ctx context.Context, id uint, req *types.TagUpdateRequest) (*models.Tag, error)
	Delete(ctx context.Context, id uint) error
}

// IIngredientService defines the interface for ingredient operations
type IIngredientService interface {
	List(ctx context.Context, f filters.IngredientFilter) ([]models.Ingredient, error)
	Get(ctx context.Context, id uint) (*models.Ingredient, error)
	Create(ctx context.Context, req *types.IngredientRequest) (*models.Ingredient, error)
	Update(ctx context.Context, id uint, req *types.IngredientUpdateRequest) (*models.Ingredient, error)
	Delete(ctx context.Context, id uint) error
}

var (
	_ IAuthService       = (*AuthService)(nil)
	_ IUserService       = (*UserService)(nil)
	_ IRecipeService     = (*RecipeService)(nil)
	_ ITagService        = (*TagService)(nil)
	_ IIngredientService = (*IngredientService)(nil)
)
