package routes

import (
	"launchcontrol/internal/handlers"
	"launchcontrol/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTradeRoutes sets up the trading routes. Trade execution is rate
// limited per client IP.
func SetupTradeRoutes(r *gin.Engine) {
	limiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 10,
		Burst:             20,
	})

	trades := r.Group("/assets/:id")
	{
		trades.POST("/buy", limiter, handlers.BuyAsset)
		trades.POST("/sell", limiter, handlers.SellAsset)
		trades.GET("/trades", handlers.ListTradeRecords)
	}
}
