package router

import (
	"github.com/gin-gonic/gin"

	"github.com/navid-fn/bestex/server/internal/handler"
)

func registerMarketRoutes(router *gin.RouterGroup, marketHandler *handler.MarketHandler) {
	markets := router.Group("/markets")
	{
		markets.GET("/:pair", marketHandler.GetAggregated)
		markets.GET("/:pair/best", marketHandler.GetBestPrice)
	}
	router.GET("/stats", marketHandler.GetStats)
	router.GET("/venues/failures", marketHandler.GetExecutionFailures)
}

func registerTickRoutes(router *gin.RouterGroup, tickHandler *handler.TickHandler) {
	ticks := router.Group("/ticks")
	{
		ticks.GET("/count", tickHandler.GetCount)
		ticks.GET("/pair/:pair", tickHandler.GetTicks)
	}
}
