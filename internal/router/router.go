package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// Config describes the non-API surface of the router.
type Config struct {
	CORSOrigins []string

	// MediaRoot is served under MediaURL when both are set and MediaURL is
	// a path. S3-backed deployments leave MediaRoot empty.
	MediaRoot string
	MediaURL  string

	// Registry exposes /metrics and records request metrics when set.
	Registry *prometheus.Registry

	// Health reports backing-service health for /health.
	Health func(ctx context.Context) error

	// Throttle limits the request rate of everything but /health and
	// /metrics when set.
	Throttle *rate.Limiter
}

// SetupRouter configures the application routes
func SetupRouter(svc api.Services, opts api.Options, cfg Config) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.CORS(cfg.CORSOrigins))

	if cfg.Registry != nil {
		router.Use(middleware.NewMetrics(cfg.Registry).Handler())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	health := healthCheck(cfg.Health)
	router.GET("/health", health)
	router.GET("/api/health", health)

	if cfg.Throttle != nil {
		router.Use(middleware.Throttle(cfg.Throttle))
	}

	if prefix := mediaPrefix(cfg.MediaURL); prefix != "" && cfg.MediaRoot != "" {
		router.Static(prefix, cfg.MediaRoot)
	}

	api.RegisterRoutes(router, svc, opts)
	router.NoRoute(middleware.NotFound())

	return router
}

func healthCheck(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// mediaPrefix turns "/media/" into "/media". Absolute URLs yield "".
func mediaPrefix(mediaURL string) string {
	if !strings.HasPrefix(mediaURL, "/") {
		return ""
	}
	prefix := strings.TrimRight(mediaURL, "/")
	if prefix == "" {
		return ""
	}
	return prefix
}
