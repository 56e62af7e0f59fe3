package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupTreasuryRoutes sets up the protocol treasury routes
func SetupTreasuryRoutes(r *gin.Engine) {
	treasury := r.Group("/treasury")
	{
		treasury.GET("", handlers.GetTreasury)
		treasury.POST("/withdraw", handlers.WithdrawTreasury)
	}
}
