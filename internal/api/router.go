package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"alarm-status-backend/config"
	"alarm-status-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, h *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), 5)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/accounts", h.GetAccounts)

		// Snapshot reads are cached briefly; they only change when a poll
		// completes anyway.
		api.GET("/accounts/:account_id/status", caching, h.GetStatus)
		api.GET("/accounts/:account_id/temperatures", caching, h.GetTemperatures)
		api.GET("/accounts/:account_id/events", caching, h.GetEvents)
		api.GET("/accounts/:account_id/events/history", h.GetEventHistory)

		api.POST("/accounts/:account_id/alarm", h.PostAlarmCommand)

		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
