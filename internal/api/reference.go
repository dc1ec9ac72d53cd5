package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/filters"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// TagHandler serves tags. Reads are public, writes need an admin.
type TagHandler struct {
	tags service.ITagService
}

func NewTagHandler(tags service.ITagService) *TagHandler {
	return &TagHandler{tags: tags}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("/", h.List)
		tags.GET("/:id/", h.Get)
		tags.POST("/", middleware.RequireAdmin(), h.Create)
		tags.PATCH("/:id/", middleware.RequireAdmin(), h.Update)
		tags.DELETE("/:id/", middleware.RequireAdmin(), h.Delete)
	}
}

func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	tag, err := h.tags.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) Create(c *gin.Context) {
	var req types.TagRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.tags.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req types.TagUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.tags.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.tags.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// IngredientHandler serves the ingredient catalogue with prefix search.
type IngredientHandler struct {
	ingredients service.IIngredientService
}

func NewIngredientHandler(ingredients service.IIngredientService) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("/", h.List)
		ingredients.GET("/:id/", h.Get)
		ingredients.POST("/", middleware.RequireAdmin(), h.Create)
		ingredients.PATCH("/:id/", middleware.RequireAdmin(), h.Update)
		ingredients.DELETE("/:id/", middleware.RequireAdmin(), h.Delete)
	}
}

func (h *IngredientHandler) List(c *gin.Context) {
	items, err := h.ingredients.List(c.Request.Context(), filters.ParseIngredientFilter(c.Request.URL.Query()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *IngredientHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	item, err := h.ingredients.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *IngredientHandler) Create(c *gin.Context) {
	var req types.IngredientRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.ingredients.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *IngredientHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req types.IngredientUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.ingredients.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *IngredientHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.ingredients.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
