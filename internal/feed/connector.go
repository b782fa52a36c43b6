package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/navid-fn/bestex/internal/metrics"
	"github.com/navid-fn/bestex/internal/models"
)

// Driver is the venue-specific part of a feed: where to connect, how to
// subscribe and how to turn one frame into quotes.
type Driver interface {
	Venue() string
	Endpoint(pairs []string) string
	// Subscribe is called once per connection. Venues that subscribe via the
	// URL return nil.
	Subscribe(conn *websocket.Conn, pairs []string) error
	// Parse returns nil, nil for frames that carry no quote (acks, heartbeats).
	Parse(raw []byte) ([]models.Quote, error)
}

// QuoteWriter is the part of the quote cache a connector writes to.
type QuoteWriter interface {
	Put(ctx context.Context, q models.Quote, ttl time.Duration)
}

type HealthState string

const (
	StateConnecting   HealthState = "connecting"
	StateConnected    HealthState = "connected"
	StateReconnecting HealthState = "reconnecting"
	StateFatal        HealthState = "fatal"
)

// Health is a point-in-time copy of a connector's state.
type Health struct {
	Venue         string      `json:"venue"`
	State         HealthState `json:"state"`
	Attempts      int         `json:"attempts"`
	LastError     string      `json:"last_error,omitempty"`
	LastMessageAt time.Time   `json:"last_message_at,omitempty"`
}

type ConnectorConfig struct {
	Pairs  []string
	TTL    time.Duration
	Policy ReconnectPolicy
	// WS overrides transport settings; URL defaults to the driver endpoint.
	WS WSConfig
}

type Option func(*Connector)

func WithHub(h *Hub) Option                 { return func(c *Connector) { c.hub = h } }
func WithSink(s TickSink) Option            { return func(c *Connector) { c.sink = s } }
func WithMetrics(m *metrics.Metrics) Option { return func(c *Connector) { c.metrics = m } }

// Connector keeps one venue's stream alive and writes every parsed quote to
// the cache. Connectors share nothing with each other.
type Connector struct {
	driver  Driver
	config  ConnectorConfig
	cache   QuoteWriter
	hub     *Hub
	sink    TickSink
	metrics *metrics.Metrics
	logger  *logrus.Entry

	mu          sync.Mutex
	lastWritten map[string]time.Time
	health      Health
}

func NewConnector(driver Driver, config ConnectorConfig, cache QuoteWriter, logger *logrus.Logger, opts ...Option) *Connector {
	pairs := make([]string, len(config.Pairs))
	for i, p := range config.Pairs {
		pairs[i] = models.NormalizePair(p)
	}
	config.Pairs = pairs

	c := &Connector{
		driver:      driver,
		config:      config,
		cache:       cache,
		logger:      logger.WithField("venue", driver.Venue()),
		lastWritten: make(map[string]time.Time),
		health:      Health{Venue: driver.Venue(), State: StateConnecting},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.New(nil)
	}
	return c
}

func (c *Connector) Venue() string { return c.driver.Venue() }

func (c *Connector) Health() Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health
}

// Run connects and reconnects until ctx is cancelled (returns nil) or the
// reconnect policy gives up (returns ErrReconnectExhausted). The backoff
// starts over after every connection that got past the handshake.
func (c *Connector) Run(ctx context.Context) error {
	venue := c.driver.Venue()

	wsConfig := c.config.WS
	if wsConfig.URL == "" {
		wsConfig.URL = c.driver.Endpoint(c.config.Pairs)
	}
	client := NewWSClient(wsConfig, WSHandler{
		OnConnect: func(*websocket.Conn) error {
			c.setConnected()
			return nil
		},
		OnSubscribe: c.driver.Subscribe,
		OnMessage:   c.HandleMessage,
	}, c.logger)

	c.logger.WithFields(logrus.Fields{
		"pairs":  c.config.Pairs,
		"policy": c.config.Policy.String(),
	}).Info("Starting feed")

	backoff := c.config.Policy.Backoff()
	attempts := 0

	for {
		connected, err := client.Session(ctx, c.config.Pairs)
		if ctx.Err() != nil {
			c.logger.Info("Feed stopped")
			return nil
		}
		if connected {
			backoff = c.config.Policy.Backoff()
			attempts = 0
		}
		if err == nil {
			err = fmt.Errorf("session ended")
		}
		connErr := &ConnectionError{Venue: venue, Err: err}

		delay, stop := backoff.Next()
		if stop {
			c.setState(StateFatal, attempts, connErr)
			c.metrics.FeedFatal.WithLabelValues(venue).Inc()
			c.logger.WithError(connErr).WithField("attempts", attempts).Error("Feed gave up reconnecting")
			return fmt.Errorf("%s after %d attempts: %w", venue, attempts, ErrReconnectExhausted)
		}

		attempts++
		c.setState(StateReconnecting, attempts, connErr)
		c.metrics.FeedReconnects.WithLabelValues(venue).Inc()
		c.logger.WithError(connErr).WithFields(logrus.Fields{
			"attempt": attempts,
			"delay":   delay,
		}).Warn("Feed disconnected, reconnecting")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.logger.Info("Feed stopped")
			return nil
		case <-timer.C:
		}
	}
}

// HandleMessage parses one raw frame and writes each quote it carries.
// Bad frames are counted and dropped; they never affect the connection.
func (c *Connector) HandleMessage(ctx context.Context, raw []byte) {
	venue := c.driver.Venue()
	c.metrics.FeedMessages.WithLabelValues(venue).Inc()

	c.mu.Lock()
	c.health.LastMessageAt = time.Now()
	c.mu.Unlock()

	quotes, err := c.driver.Parse(raw)
	if err != nil {
		c.dropMessage(&ParseError{Venue: venue, Err: err}, raw)
		return
	}

	for _, q := range quotes {
		if q.VenueID == "" {
			q.VenueID = venue
		}
		q.Pair = models.NormalizePair(q.Pair)
		if err := q.Validate(); err != nil {
			c.dropMessage(&ParseError{Venue: venue, Err: err}, raw)
			continue
		}
		c.write(ctx, q)
	}
}

// write stores q unless a newer observation for the same pair was already
// written. Equal timestamps are written.
func (c *Connector) write(ctx context.Context, q models.Quote) bool {
	c.mu.Lock()
	last, seen := c.lastWritten[q.Pair]
	if seen && q.ObservedAt.Before(last) {
		c.mu.Unlock()
		c.metrics.OutOfOrderQuotes.WithLabelValues(q.VenueID).Inc()
		c.logger.WithFields(logrus.Fields{
			"pair":        q.Pair,
			"observed_at": q.ObservedAt,
			"last":        last,
		}).Debug("Discarding out-of-order quote")
		return false
	}
	c.lastWritten[q.Pair] = q.ObservedAt
	c.mu.Unlock()

	c.cache.Put(ctx, q, c.config.TTL)
	c.metrics.CacheWrites.WithLabelValues(q.VenueID).Inc()

	if c.hub != nil {
		c.hub.Publish(q)
	}
	if c.sink != nil {
		if err := c.sink.SendQuote(ctx, q); err != nil {
			c.logger.WithError(err).WithField("pair", q.Pair).Warn("Failed to record tick")
		}
	}
	return true
}

func (c *Connector) dropMessage(err *ParseError, raw []byte) {
	c.metrics.FeedParseErrors.WithLabelValues(err.Venue).Inc()
	if len(raw) > 256 {
		raw = raw[:256]
	}
	c.logger.WithError(err).WithField("raw", string(raw)).Debug("Dropping message")
}

func (c *Connector) setConnected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health.State = StateConnected
	c.health.Attempts = 0
	c.health.LastError = ""
}

func (c *Connector) setState(state HealthState, attempts int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health.State = state
	c.health.Attempts = attempts
	if err != nil {
		c.health.LastError = err.Error()
	}
}
