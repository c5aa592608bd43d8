package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"emergency-dispatch-backend/config"
	"emergency-dispatch-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, handler *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Fleet reads are cacheable; chat and session state never are.
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/chat", handler.PostChat)

		api.GET("/sessions/:session_id", handler.GetSession)
		api.DELETE("/sessions/:session_id", handler.DeleteSession)
		api.POST("/sessions/:session_id/location", handler.PostSessionLocation)

		api.GET("/units/:service", caching, handler.GetUnits)
		api.GET("/units/:service/available", handler.GetAvailableUnits)
		api.GET("/units/:service/nearby", handler.GetNearbyUnits)
		api.GET("/stations/:service", caching, handler.GetStations)

		api.GET("/dispatches/:service", handler.GetDispatches)
		api.POST("/dispatches/:service/:dispatch_id/complete", handler.PostCompleteDispatch)

		api.GET("/cases/:case_number", handler.GetCase)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
