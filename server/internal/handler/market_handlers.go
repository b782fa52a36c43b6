package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/navid-fn/bestex/internal/models"
	"github.com/navid-fn/bestex/server/internal/service"
)

type MarketHandler struct {
	marketService *service.MarketService
}

func NewMarketHandler(service *service.MarketService) *MarketHandler {
	return &MarketHandler{
		marketService: service,
	}
}

// GetAggregated serves the consolidated view of one pair. Pairs use "-" in
// the path, e.g. /v1/markets/BTC-USD.
func (h *MarketHandler) GetAggregated(c *gin.Context) {
	pair := models.NormalizePair(c.Param("pair"))
	view, ok := h.marketService.GetAggregated(c.Request.Context(), pair)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": (&models.NoLiquidityError{Pair: pair}).Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *MarketHandler) GetBestPrice(c *gin.Context) {
	side, err := models.ParseSide(c.DefaultQuery("side", "buy"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	best, err := h.marketService.GetBestPrice(c.Request.Context(), c.Param("pair"), side)
	var noLiq *models.NoLiquidityError
	switch {
	case errors.As(err, &noLiq):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, best)
	}
}

func (h *MarketHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.marketService.GetStats(c.Request.Context()))
}

func (h *MarketHandler) GetExecutionFailures(c *gin.Context) {
	c.JSON(http.StatusOK, h.marketService.GetExecutionFailures(c.Request.Context()))
}
