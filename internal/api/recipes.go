package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeHandler serves recipes and the per-user favorite and cart lists.
type RecipeHandler struct {
	recipes      service.IRecipeService
	pageSize     int
	createLimits *middleware.RateLimiter
}

// NewRecipeHandler creates the handler. limiter may be nil, in which case
// recipe creation is not throttled.
func NewRecipeHandler(recipes service.IRecipeService, pageSize int, limiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, pageSize: pageSize, createLimits: limiter}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	create := []gin.HandlerFunc{middleware.RequireAuth()}
	if h.createLimits != nil {
		create = append(create, h.createLimits.Middleware())
	}
	create = append(create, h.Create)

	recipes := router.Group("/recipes")
	{
		recipes.GET("/", h.List)
		recipes.POST("/", create...)
		recipes.GET("/download_shopping_cart/", middleware.RequireAuth(), h.DownloadShoppingCart)
		recipes.GET("/:id/", h.Get)
		recipes.PATCH("/:id/", middleware.RequireAuth(), h.Update)
		recipes.DELETE("/:id/", middleware.RequireAuth(), h.Delete)
		recipes.POST("/:id/favorite/", middleware.RequireAuth(), h.AddFavorite)
		recipes.DELETE("/:id/favorite/", middleware.RequireAuth(), h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart/", middleware.RequireAuth(), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart/", middleware.RequireAuth(), h.RemoveFromCart)
	}
}

func (h *RecipeHandler) List(c *gin.Context) {
	viewer := middleware.CurrentUser(c)
	f, err := filters.ParseRecipeFilter(c.Request.URL.Query(), viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	page := pageRequest(c, h.pageSize)
	items, total, err := h.recipes.List(c.Request.Context(), viewer, f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, total, items))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	req, ok := bindRecipe(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	req, ok := bindRecipe(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Update(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.toggle(c, h.recipes.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.untoggle(c, h.recipes.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.toggle(c, h.recipes.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.untoggle(c, h.recipes.RemoveFromCart)
}

type addFunc func(ctx context.Context, user *models.User, recipeID uint) (*types.RecipeMini, error)

type removeFunc func(ctx context.Context, user *models.User, recipeID uint) error

func (h *RecipeHandler) toggle(c *gin.Context, add addFunc) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	mini, err := add(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mini)
}

func (h *RecipeHandler) untoggle(c *gin.Context, remove removeFunc) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated shopping list as a text file.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	user := middleware.CurrentUser(c)
	items, err := h.recipes.ShoppingList(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", service.ShoppingListFilename(user)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderShoppingList(items)))
}

// bindRecipe accepts either a JSON body with a data-URI image or a
// multipart form with an image file.
func bindRecipe(c *gin.Context) (*types.RecipeWriteRequest, bool) {
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		return bindRecipeForm(c)
	}
	var req types.RecipeWriteRequest
	if !bindJSON(c, &req) {
		return nil, false
	}
	return &req, true
}

// bindRecipeForm reads a multipart recipe. Tags come as repeated or
// comma-separated values, ingredients as a JSON array in one field.
func bindRecipeForm(c *gin.Context) (*types.RecipeWriteRequest, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Detail: "Multipart form parse error."})
		return nil, false
	}

	req := &types.RecipeWriteRequest{}
	errs := types.FieldErrors{}

	if v, ok := formValue(form.Value, "name"); ok {
		req.Name = &v
	}
	if v, ok := formValue(form.Value, "text"); ok {
		req.Text = &v
	}
	if v, ok := formValue(form.Value, "cooking_time"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs.Add("cooking_time", "A valid integer is required.")
		} else {
			req.CookingTime = &n
		}
	}

	if values, ok := form.Value["tags"]; ok {
		req.Tags = []uint{}
		for _, raw := range values {
			for _, part := range strings.Split(raw, ",") {
				if part = strings.TrimSpace(part); part == "" {
					continue
				}
				id, err := strconv.ParseUint(part, 10, 64)
				if err != nil {
					errs.Add("tags", "Incorrect type.")
					continue
				}
				req.Tags = append(req.Tags, uint(id))
			}
		}
	}

	if v, ok := formValue(form.Value, "ingredients"); ok {
		if err := json.Unmarshal([]byte(v), &req.Ingredients); err != nil {
			errs.Add("ingredients", "Incorrect type.")
		}
	}

	if files := form.File["image"]; len(files) > 0 {
		req.Image = &types.ImageInput{File: files[0]}
	} else if v, ok := formValue(form.Value, "image"); ok {
		req.Image = &types.ImageInput{DataURI: v}
	}

	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return nil, false
	}
	return req, true
}

func formValue(values map[string][]string, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}
