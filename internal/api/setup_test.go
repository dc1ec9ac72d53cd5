package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

type apiEnv struct {
	db     *gorm.DB
	store  *storage.LocalStore
	auth   *service.AuthService
	router *gin.Engine
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewSQLiteDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)
	images := service.NewImageService(store)

	router := gin.New()
	router.Use(middleware.Recovery())
	api.RegisterRoutes(router, api.Services{
		Auth:        auth,
		Users:       service.NewUserService(db, store),
		Recipes:     service.NewRecipeService(db, images),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
	}, api.Options{PageSize: 6})

	return &apiEnv{db: db, store: store, auth: auth, router: router}
}

func (e *apiEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

// do sends a JSON request. A nil user makes the request anonymous.
func (e *apiEnv) do(t *testing.T, method, path string, body any, user *models.User) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Token "+e.token(t, user))
	}
	return e.serve(req)
}

func (e *apiEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type fieldErrors map[string][]string
