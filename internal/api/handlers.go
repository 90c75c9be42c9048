// Package api implements the JSON endpoints under /api.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/smartplate/internal/logger"
	"github.com/pageza/smartplate/internal/middleware"
	"github.com/pageza/smartplate/internal/service"
)

// Pinger reports whether a backing store is reachable
type Pinger func(ctx context.Context) error

// Deps are the services the API is built from
type Deps struct {
	Recommend service.IRecommendService
	Users     service.IUserService
	Feedback  service.IFeedbackService
	// RateLimit guards the recommendation endpoints; nil disables it
	RateLimit gin.HandlerFunc
	// CORSOrigins is passed to the CORS middleware
	CORSOrigins []string
	// Health checks run by /api/health, keyed by component name
	Health map[string]Pinger
}

// RegisterRoutes mounts every /api endpoint on router
func RegisterRoutes(router *gin.Engine, deps Deps) {
	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.CORS(deps.CORSOrigins), middleware.ErrorHandler())

	apiGroup.GET("/health", HealthCheck(deps.Health))

	recommendHandler := NewRecommendHandler(deps.Recommend, deps.Users, deps.RateLimit)
	recommendHandler.RegisterRoutes(apiGroup)

	feedbackHandler := NewFeedbackHandler(deps.Feedback)
	feedbackHandler.RegisterRoutes(apiGroup)
}

// HealthCheck returns the health status of the API and its stores
func HealthCheck(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		components := gin.H{}
		healthy := true
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				logger.FromContext(ctx).WithError(err).WithField("component", name).Warn("health check failed")
				components[name] = "unhealthy"
				healthy = false
				continue
			}
			components[name] = "healthy"
		}

		status, code := "healthy", http.StatusOK
		if !healthy {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		body := gin.H{
			"status":  status,
			"message": "SmartPlate API is running",
		}
		if len(components) > 0 {
			body["components"] = components
		}
		c.JSON(code, body)
	}
}
