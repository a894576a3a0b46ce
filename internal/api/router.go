package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"table-reservation-backend/config"
	"table-reservation-backend/internal/mw"
)

// limiterIdle is how long a client may stay silent before its rate limiter is dropped.
const limiterIdle = 10 * time.Minute

// NewRouter creates and configures a new Gin router. Background upkeep of
// the rate limiter stops when ctx is done.
func NewRouter(ctx context.Context, handler *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	rateLimiter := mw.RateLimiter(limiter)
	go pruneLimiters(ctx, limiter, limiterIdle)

	responses := mw.NewResponseCache(cfg.CacheTTL)
	caching := responses.Cache()
	invalidate := responses.Invalidate()

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/reservations", caching, handler.ListReservations)
		api.POST("/reservations", invalidate, handler.SubmitReservation)
		api.DELETE("/reservations", invalidate, handler.ClearReservations)
		api.DELETE("/reservations/:id", invalidate, handler.DeleteReservation)
		api.POST("/reservations/:id/edit", handler.BeginEdit)

		api.GET("/session", handler.GetSession)
		api.DELETE("/session/edit", handler.CancelEdit)

		api.POST("/validate", handler.ValidateField)
		api.GET("/stats", caching, handler.GetStats)
		api.GET("/export.csv", handler.ExportCSV)
		api.GET("/venue", handler.GetVenue)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}

func pruneLimiters(ctx context.Context, limiter *mw.IPRateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			limiter.Prune(every)
		case <-ctx.Done():
			return
		}
	}
}
