package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/placevisit-backend-go/internal/handler"
	"github.com/jengzang/placevisit-backend-go/internal/metrics"
	"github.com/jengzang/placevisit-backend-go/internal/middleware"
	"github.com/jengzang/placevisit-backend-go/internal/security"
)

// Handlers groups the HTTP handlers mounted by SetupRouter
type Handlers struct {
	Ping     *handler.PingHandler
	Visit    *handler.VisitHandler
	Settings *handler.SettingsHandler
	Catalog  *handler.CatalogHandler
}

// SetupRouter builds the HTTP engine. limiter may be nil to disable rate limiting.
func SetupRouter(h Handlers, verifier security.Verifier, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Place visit API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(verifier))
	if limiter != nil {
		api.Use(middleware.RateLimit(limiter))
	}
	{
		pings := api.Group("/pings")
		{
			pings.POST("", h.Ping.Ingest)
			pings.POST("/batch", h.Ping.IngestBatch)
		}

		visits := api.Group("/visits")
		{
			visits.GET("", h.Visit.List)
			visits.GET("/stream", h.Visit.Stream)
			visits.GET("/:id", h.Visit.Get)
		}

		settings := api.Group("/settings")
		{
			settings.GET("", h.Settings.Get)
			settings.PUT("", middleware.RequireRole(security.RoleAdmin), h.Settings.Put)
		}

		trips := api.Group("/trips")
		{
			trips.GET("", h.Catalog.ListTrips)
			trips.POST("", h.Catalog.CreateTrip)
			trips.POST("/:id/regions", h.Catalog.CreateRegion)
		}
		api.POST("/regions/:id/places", h.Catalog.CreatePlace)
		api.PATCH("/places/:id", h.Catalog.RenamePlace)
		api.DELETE("/places/:id", h.Catalog.DeletePlace)
	}

	return r
}
