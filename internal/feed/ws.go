package feed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocket timeouts
const (
	wsHandshakeTimeout = 10 * time.Second
	wsReadTimeout      = 60 * time.Second
	wsWriteTimeout     = 10 * time.Second
	wsPingInterval     = 30 * time.Second
)

// WSConfig holds WebSocket connection settings
type WSConfig struct {
	URL              string
	Headers          http.Header
	PingDisabled     bool          // Set true if server sends pings
	PingInterval     time.Duration // 0 = default 30s
	ReadTimeout      time.Duration // 0 = default 60s
	HandshakeTimeout time.Duration // 0 = default 10s
}

// WSHandler defines callbacks for WebSocket events
type WSHandler struct {
	// OnConnect is called after connection is established (optional)
	OnConnect func(conn *websocket.Conn) error

	// OnSubscribe is called to subscribe to pairs (optional, some venues subscribe by URL)
	OnSubscribe func(conn *websocket.Conn, pairs []string) error

	// OnMessage receives every data frame in arrival order
	OnMessage func(ctx context.Context, msg []byte)
}

// WSClient runs one WebSocket session at a time. Reconnecting is the caller's job.
type WSClient struct {
	config  WSConfig
	handler WSHandler
	logger  *logrus.Entry
	mu      sync.Mutex
}

func NewWSClient(config WSConfig, handler WSHandler, logger *logrus.Entry) *WSClient {
	if config.PingInterval == 0 {
		config.PingInterval = wsPingInterval
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = wsReadTimeout
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = wsHandshakeTimeout
	}
	return &WSClient{
		config:  config,
		handler: handler,
		logger:  logger,
	}
}

// Session dials, subscribes and reads until the connection breaks or ctx ends.
// connected reports whether the handshake succeeded, so the caller can reset its backoff.
func (c *WSClient) Session(ctx context.Context, pairs []string) (connected bool, err error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.config.HandshakeTimeout}

	conn, _, err := dialer.DialContext(ctx, c.config.URL, c.config.Headers)
	if err != nil {
		return false, fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	c.logger.WithField("url", c.config.URL).Info("WebSocket connected")

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	})

	if c.handler.OnConnect != nil {
		if err := c.handler.OnConnect(conn); err != nil {
			return true, fmt.Errorf("onConnect failed: %w", err)
		}
	}

	if c.handler.OnSubscribe != nil && len(pairs) > 0 {
		if err := c.handler.OnSubscribe(conn, pairs); err != nil {
			return true, fmt.Errorf("subscribe failed: %w", err)
		}
	}

	return true, c.readLoop(ctx, conn)
}

// readLoop handles reading messages and sending pings
func (c *WSClient) readLoop(ctx context.Context, conn *websocket.Conn) error {
	messages := make(chan []byte, 100)
	readErr := make(chan error, 1)

	go func() {
		defer close(messages)
		for {
			conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				select {
				case readErr <- err:
				default:
				}
				return
			}
			select {
			case messages <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	var pingChan <-chan time.Time
	if !c.config.PingDisabled {
		pingTicker := time.NewTicker(c.config.PingInterval)
		defer pingTicker.Stop()
		pingChan = pingTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			c.mu.Unlock()
			return nil

		case err := <-readErr:
			return fmt.Errorf("read error: %w", err)

		case msg, ok := <-messages:
			if !ok {
				// reader exited; its error (if any) is already queued
				select {
				case err := <-readErr:
					return fmt.Errorf("read error: %w", err)
				default:
					return fmt.Errorf("connection closed")
				}
			}
			if c.handler.OnMessage != nil {
				c.handler.OnMessage(ctx, msg)
			}

		case <-pingChan:
			c.mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
		}
	}
}

// WriteJSON sends a JSON message with the standard write deadline.
// Only call it before the read loop starts, e.g. from OnConnect or OnSubscribe.
func WriteJSON(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(v)
}
