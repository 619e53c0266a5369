package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns a configured CORS middleware. Empty lists fall back to
// permissive defaults so a missing config section does not block browsers.
func CORS(origins, methods, headers []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	if len(methods) == 0 {
		methods = []string{"GET", "POST"}
	}
	if len(headers) == 0 {
		headers = []string{"Content-Type", apiKeyHeader, requestIDHeader}
	}
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  methods,
		AllowHeaders:  headers,
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}
