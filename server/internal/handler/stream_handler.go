package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/navid-fn/bestex/internal/feed"
	"github.com/navid-fn/bestex/internal/models"
)

const (
	streamBuffer       = 64
	streamWriteTimeout = 5 * time.Second
)

// StreamHandler pushes every quote written for a pair to a WebSocket client.
type StreamHandler struct {
	hub      *feed.Hub
	upgrader websocket.Upgrader
	logger   *logrus.Entry
}

func NewStreamHandler(hub *feed.Hub, logger *logrus.Logger) *StreamHandler {
	return &StreamHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.WithField("component", "stream"),
	}
}

func (h *StreamHandler) Stream(c *gin.Context) {
	pair := models.NormalizePair(c.Param("pair"))
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Debug("Upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(pair, streamBuffer)
	defer sub.Unsubscribe()

	// the client sends nothing; reading only detects that it went away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-c.Request.Context().Done():
			return
		case q, ok := <-sub.C:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(q); err != nil {
				return
			}
		}
	}
}
