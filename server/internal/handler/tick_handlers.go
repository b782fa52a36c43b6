package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/navid-fn/bestex/server/internal/service"
)

type TickHandler struct {
	tickService *service.TicksService
}

func NewTickHandler(service *service.TicksService) *TickHandler {
	return &TickHandler{
		tickService: service,
	}
}

func (h *TickHandler) GetTicks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	ticks, err := h.tickService.GetTicks(c.Request.Context(), c.Param("pair"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ticks)
}

func (h *TickHandler) GetCount(c *gin.Context) {
	counts, err := h.tickService.GetCountPerSource(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}
