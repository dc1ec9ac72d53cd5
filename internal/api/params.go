package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

// idParam parses the :id path segment. Anything but a positive integer
// answers 404, the same as a missing row.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		notFound(c)
		return 0, false
	}
	return uint(id), true
}

// recipesLimit reads the optional recipes_limit query parameter. Zero means
// no limit.
func recipesLimit(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("recipes_limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.FieldErrors{"recipes_limit": {"A valid integer is required."}}
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}
