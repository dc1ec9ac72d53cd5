package mocks

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockRecipeService is a mock implementation of the RecipeService interface
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) List(ctx context.Context, viewer *models.User, f filters.RecipeFilter, page service.PageRequest) ([]types.RecipeResponse, int64, error) {
	args := m.Called(ctx, viewer, f, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.RecipeResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) Get(ctx context.Context, viewer *models.User, id uint) (*types.RecipeResponse, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, author *models.User, req *types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, author, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, actor *models.User, id uint, req *types.RecipeWriteRequest) (*types.RecipeResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, actor *models.User, id uint) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockRecipeService) AddFavorite(ctx context.Context, user *models.User, recipeID uint) (*types.RecipeMini, error) {
	args := m.Called(ctx, user, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeMini), args.Error(1)
}

func (m *MockRecipeService) RemoveFavorite(ctx context.Context, user *models.User, recipeID uint) error {
	args := m.Called(ctx, user, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) AddToCart(ctx context.Context, user *models.User, recipeID uint) (*types.RecipeMini, error) {
	args := m.Called(ctx, user, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeMini), args.Error(1)
}

func (m *MockRecipeService) RemoveFromCart(ctx context.Context, user *models.User, recipeID uint) error {
	args := m.Called(ctx, user, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) ShoppingList(ctx context.Context, user *models.User) ([]service.ShoppingItem, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ShoppingItem), args.Error(1)
}

var (
	_ service.IAuthService   = (*MockAuthService)(nil)
	_ service.IRecipeService = (*MockRecipeService)(nil)
)
