package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// respondError writes err in the API's error shape. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	var (
		fieldErrs types.FieldErrors
		verr      *service.ValidationError
	)

	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, fieldErrs)
	case errors.As(err, &verr):
		if verr.Field != "" {
			c.JSON(http.StatusBadRequest, types.FieldErrors{verr.Field: {verr.Message}})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Message})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Unable to log in with provided credentials."})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Detail: "Not found."})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, middleware.ErrorResponse{Detail: "You do not have permission to perform this action."})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Detail: "Invalid token."})
	default:
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{Detail: "internal server error"})
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, middleware.ErrorResponse{Detail: "Not found."})
}
