package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/navid-fn/bestex/internal/feed"
)

// HealthReporter is implemented by feed.Manager.
type HealthReporter interface {
	Health() []feed.Health
}

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type OpsHandler struct {
	feeds HealthReporter
	cache Pinger
}

// NewOpsHandler accepts a nil feeds reporter for processes that run no feeds.
func NewOpsHandler(feeds HealthReporter, cache Pinger) *OpsHandler {
	return &OpsHandler{feeds: feeds, cache: cache}
}

// Health is always 200 while the process serves; a down cache or a fatal
// feed shows up as "degraded" since the system keeps working without them.
func (h *OpsHandler) Health(c *gin.Context) {
	status := "ok"
	body := gin.H{}

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()
	if err := h.cache.Ping(ctx); err != nil {
		status = "degraded"
		body["cache"] = err.Error()
	} else {
		body["cache"] = "ok"
	}

	if h.feeds != nil {
		health := h.feeds.Health()
		for _, f := range health {
			if f.State == feed.StateFatal {
				status = "degraded"
			}
		}
		body["feeds"] = health
	}

	body["status"] = status
	c.JSON(http.StatusOK, body)
}
