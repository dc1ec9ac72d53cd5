package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	store   *storage.LocalStore
	images  *service.ImageService
	recipes *service.RecipeService
	users   *service.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	images := service.NewImageService(store)
	return &testEnv{
		db:      db,
		store:   store,
		images:  images,
		recipes: service.NewRecipeService(db, images),
		users:   service.NewUserService(db, store),
	}
}

var ctx = context.Background()

func requireFieldError(t *testing.T, err error, field string) types.FieldErrors {
	t.Helper()
	var fe types.FieldErrors
	require.True(t, errors.As(err, &fe), "expected field errors, got %v", err)
	require.Contains(t, fe, field)
	return fe
}

func requireValidation(t *testing.T, err error, msg string) {
	t.Helper()
	var ve *service.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	require.Equal(t, msg, ve.Message)
}
