package router

import (
	"net/http"

	"slotnotify/internal/common"
	"slotnotify/internal/config"
	"slotnotify/internal/domain/notification"
	"slotnotify/internal/middleware"

	"github.com/gin-gonic/gin"
)

// New builds the gin engine: global middleware, the public health check and
// the API-key protected notification routes.
func New(cfg *config.Config, svc *notification.Service) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()

	// Order matters: recovery first, then request ids so the logger can print them.
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders),
		middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware(),
	)

	r.GET("/health", health(svc))

	api := r.Group("/api/v1", middleware.Auth(cfg.Auth.APIKeys))
	notification.NewHandler(svc).RegisterRoutes(api)

	return r
}

// health reports liveness plus which provider is active, so a misconfigured
// deployment is visible without sending anything.
func health(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		common.Success(c, http.StatusOK, gin.H{
			"status":              "ok",
			"service":             "slotnotify",
			"provider":            svc.ProviderName(),
			"deliveries_retained": svc.Deliveries(1).Retained,
		})
	}
}
