package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves accounts and subscriptions.
type UserHandler struct {
	auth     service.IAuthService
	users    service.IUserService
	pageSize int
}

func NewUserHandler(auth service.IAuthService, users service.IUserService, pageSize int) *UserHandler {
	return &UserHandler{auth: auth, users: users, pageSize: pageSize}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/", h.List)
		users.POST("/", h.Register)
		users.GET("/me/", middleware.RequireAuth(), h.Me)
		users.POST("/set_password/", middleware.RequireAuth(), h.SetPassword)
		users.GET("/subscriptions/", middleware.RequireAuth(), h.Subscriptions)
		users.GET("/:id/", h.Get)
		users.POST("/:id/subscribe/", middleware.RequireAuth(), h.Subscribe)
		users.DELETE("/:id/subscribe/", middleware.RequireAuth(), h.Unsubscribe)
	}
}

func (h *UserHandler) List(c *gin.Context) {
	page := pageRequest(c, h.pageSize)
	items, total, err := h.users.List(c.Request.Context(), middleware.CurrentUser(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, total, items))
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.RegisteredUser{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, types.NewUserResponse(middleware.CurrentUser(c), false))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.SetPassword(c.Request.Context(), middleware.CurrentUser(c), &req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	limit, err := recipesLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page := pageRequest(c, h.pageSize)
	items, total, err := h.users.Subscriptions(c.Request.Context(), middleware.CurrentUser(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, total, items))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	limit, err := recipesLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}

	sub, err := h.users.Subscribe(c.Request.Context(), middleware.CurrentUser(c), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.users.Unsubscribe(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
