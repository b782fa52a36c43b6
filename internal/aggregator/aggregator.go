// Package aggregator combines the cached quotes of every venue into one view
// per pair. Nothing is stored; each call works on whatever is present in the
// cache at that moment.
package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/navid-fn/bestex/internal/models"
)

// QuoteSource returns the present quotes of pair across venues, one bounded
// read per venue.
type QuoteSource interface {
	Collect(ctx context.Context, venues []string, pair string, timeout time.Duration) []models.Quote
}

type Aggregator struct {
	source      QuoteSource
	venues      []string
	readTimeout time.Duration
	logger      *logrus.Entry
	now         func() time.Time
}

// New fails on a non-positive readTimeout, which would expire every read
// before it starts.
func New(source QuoteSource, venues []string, readTimeout time.Duration, logger *logrus.Logger) (*Aggregator, error) {
	if readTimeout <= 0 {
		return nil, fmt.Errorf("aggregator read timeout must be positive, got %s", readTimeout)
	}
	return &Aggregator{
		source:      source,
		venues:      venues,
		readTimeout: readTimeout,
		logger:      logger.WithField("component", "aggregator"),
		now:         time.Now,
	}, nil
}

func (a *Aggregator) Venues() []string { return a.venues }

// GetBestPrice returns the lowest ask for buys and the highest bid for sells.
func (a *Aggregator) GetBestPrice(ctx context.Context, pair string, side models.Side) (models.BestPrice, error) {
	pair = models.NormalizePair(pair)
	quotes := a.source.Collect(ctx, a.venues, pair, a.readTimeout)

	best, ok := BestPrice(quotes, side)
	if !ok {
		return models.BestPrice{}, &models.NoLiquidityError{Pair: pair, Side: side}
	}
	best.Pair = pair
	best.ComputedAt = a.now().UTC()
	return best, nil
}

// GetAggregatedMarketData returns false when no venue has a present quote.
func (a *Aggregator) GetAggregatedMarketData(ctx context.Context, pair string) (models.AggregatedView, bool) {
	pair = models.NormalizePair(pair)
	quotes := a.source.Collect(ctx, a.venues, pair, a.readTimeout)
	if len(quotes) == 0 {
		a.logger.WithField("pair", pair).Debug("No present quotes")
		return models.AggregatedView{}, false
	}
	return Aggregate(pair, quotes, a.now().UTC()), true
}

// MarketStats summarises several pairs. Pairs without quotes are left out.
func (a *Aggregator) MarketStats(ctx context.Context, pairs []string) models.MarketStats {
	stats := models.MarketStats{
		Pairs:      make([]models.AggregatedView, 0, len(pairs)),
		ComputedAt: a.now().UTC(),
	}

	sources := make(map[string]struct{})
	var spreadSum float64
	for _, pair := range pairs {
		view, ok := a.GetAggregatedMarketData(ctx, pair)
		if !ok {
			continue
		}
		stats.Pairs = append(stats.Pairs, view)
		stats.TotalVolume += view.TotalVolume24h
		spreadSum += view.SpreadPercent
		for _, s := range view.Sources {
			sources[s] = struct{}{}
		}
	}

	if n := len(stats.Pairs); n > 0 {
		stats.AvgSpread = spreadSum / float64(n)
	}
	stats.ActiveSources = len(sources)
	return stats
}
