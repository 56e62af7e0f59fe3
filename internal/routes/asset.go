package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupAssetRoutes sets up all routes related to asset issuance and inspection
func SetupAssetRoutes(r *gin.Engine) {
	assets := r.Group("/assets")
	{
		assets.POST("", handlers.LaunchAsset)
		assets.GET("", handlers.ListAssets)
		assets.GET("/:id", handlers.GetAsset)
		assets.GET("/:id/snapshots", handlers.ListAssetSnapshots)
		assets.GET("/:id/quote/buy", handlers.GetBuyQuote)
		assets.GET("/:id/quote/sell", handlers.GetSellQuote)
		assets.GET("/:id/max-buy", handlers.GetMaxBuy)
		assets.GET("/:id/balance/:trader", handlers.GetTraderBalance)
	}
}
