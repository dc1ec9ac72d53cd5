package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles what the handlers depend on.
type Services struct {
	Auth        service.IAuthService
	Users       service.IUserService
	Recipes     service.IRecipeService
	Tags        service.ITagService
	Ingredients service.IIngredientService
}

// Options tune the API surface.
type Options struct {
	PageSize      int
	RecipeLimiter *middleware.RateLimiter
}

// RegisterRoutes mounts every endpoint under /api. The caller identifies
// itself through the Authorization header on any route.
func RegisterRoutes(router *gin.Engine, svc Services, opts Options) {
	RegisterValidators()

	if opts.PageSize < 1 {
		opts.PageSize = 6
	}

	root := router.Group("/api")
	root.Use(middleware.AuthMiddleware(svc.Auth))

	NewAuthHandler(svc.Auth).RegisterRoutes(root)
	NewUserHandler(svc.Auth, svc.Users, opts.PageSize).RegisterRoutes(root)
	NewTagHandler(svc.Tags).RegisterRoutes(root)
	NewIngredientHandler(svc.Ingredients).RegisterRoutes(root)
	NewRecipeHandler(svc.Recipes, opts.PageSize, opts.RecipeLimiter).RegisterRoutes(root)
}
