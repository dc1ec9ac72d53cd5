package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Throttle caps the request rate of the whole API with a token bucket.
// Requests over the limit get 429 without reaching the handlers.
func Throttle(limiter *rate.Limiter) gin.HandlerFunc {
	limit := strconv.Itoa(int(limiter.Limit()))
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Detail: "Request was throttled."})
			return
		}
		c.Header("X-RateLimit-Limit", limit)
		c.Next()
	}
}
