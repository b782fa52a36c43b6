package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/navid-fn/bestex/server/internal/handler"
)

// Config lists the handlers to mount. Nil handlers leave their routes out.
type Config struct {
	OpsHandler    *handler.OpsHandler
	MarketHandler *handler.MarketHandler
	TickHandler   *handler.TickHandler
	StreamHandler *handler.StreamHandler
	Gatherer      prometheus.Gatherer
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.OpsHandler != nil {
		router.GET("/healthz", cfg.OpsHandler.Health)
	}
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/v1/")
	if cfg.MarketHandler != nil {
		registerMarketRoutes(api, cfg.MarketHandler)
	}
	if cfg.TickHandler != nil {
		registerTickRoutes(api, cfg.TickHandler)
	}
	if cfg.StreamHandler != nil {
		api.GET("/stream/:pair", cfg.StreamHandler.Stream)
	}

	return router
}
