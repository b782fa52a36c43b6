package quotecache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/navid-fn/bestex/internal/fanout"
	"github.com/navid-fn/bestex/internal/models"
)

const failureCounterTTL = 5 * time.Minute

// QuoteCache stores Quotes under "{venueId}:{pair}" with a per-write TTL.
type QuoteCache struct {
	store  Store
	logger *logrus.Entry
}

func New(store Store, logger *logrus.Logger) *QuoteCache {
	return &QuoteCache{
		store:  store,
		logger: logger.WithField("component", "quote-cache"),
	}
}

// Put writes the quote, replacing whatever was stored for its venue and pair.
func (c *QuoteCache) Put(ctx context.Context, q models.Quote, ttl time.Duration) {
	data, err := json.Marshal(q)
	if err != nil {
		c.logger.WithError(err).WithField("key", q.CacheKey()).Error("Failed to encode quote")
		return
	}
	c.store.Set(ctx, q.CacheKey(), data, ttl)
}

// Get returns the present quote for a venue and pair. Expired, missing and
// undecodable entries are all reported as absent.
func (c *QuoteCache) Get(ctx context.Context, venueID, pair string) (models.Quote, bool) {
	key := models.QuoteKey(venueID, pair)
	data, ok := c.store.Get(ctx, key)
	if !ok {
		return models.Quote{}, false
	}
	var q models.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Dropping undecodable cached quote")
		return models.Quote{}, false
	}
	return q, true
}

// Collect reads the pair from every venue concurrently, each read bounded by
// timeout, and returns the present quotes in venue order.
func (c *QuoteCache) Collect(ctx context.Context, venues []string, pair string, timeout time.Duration) []models.Quote {
	results := fanout.Each(ctx, venues, timeout, func(ctx context.Context, venue string) (*models.Quote, error) {
		q, ok := c.Get(ctx, venue, pair)
		if !ok {
			return nil, nil
		}
		return &q, nil
	})

	quotes := make([]models.Quote, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			c.logger.WithError(r.Err).WithFields(logrus.Fields{"venue": r.Key, "pair": pair}).Debug("Quote read timed out")
			continue
		}
		if r.Value != nil {
			quotes = append(quotes, *r.Value)
		}
	}
	return quotes
}

func (c *QuoteCache) Delete(ctx context.Context, venueID, pair string) {
	c.store.Del(ctx, models.QuoteKey(venueID, pair))
}

// InvalidateVenue drops every quote of a venue, e.g. when its feed goes fatal.
func (c *QuoteCache) InvalidateVenue(ctx context.Context, venueID string) int {
	return c.store.InvalidatePattern(ctx, venueID+":*")
}

// RecordExecutionFailure bumps the rolling failure counter of a venue.
func (c *QuoteCache) RecordExecutionFailure(ctx context.Context, venueID string) int64 {
	return c.store.Incr(ctx, failureKey(venueID), failureCounterTTL)
}

// ExecutionFailures reads the rolling failure counter of a venue.
func (c *QuoteCache) ExecutionFailures(ctx context.Context, venueID string) int64 {
	data, ok := c.store.Get(ctx, failureKey(venueID))
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (c *QuoteCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func failureKey(venueID string) string {
	return "execfail:" + venueID
}
