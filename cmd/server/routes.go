package main

import (
	"github.com/gin-gonic/gin"
	"github.com/ltiit/asterisk-api/internal/middleware"
	"github.com/ltiit/asterisk-api/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.RequestID(), middleware.CORS())

	// Rate limiter for device write routes
	writeLimiter := middleware.NewRateLimiter(10, 20)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		api.GET("", func(c *gin.Context) {
			c.String(200, "Hello from the Asterisk API!")
		})

		api.GET("/devices/", svc.deviceHandler.List)
		api.GET("/devices/:cat_metric", svc.deviceHandler.GetByCatMetric)

		writes := api.Group("/devices", writeLimiter.Middleware())
		{
			writes.POST("/", svc.deviceHandler.Create)
			writes.PUT("/", svc.deviceHandler.Merge)
			writes.DELETE("/", svc.deviceHandler.Delete)
		}
	}
}
