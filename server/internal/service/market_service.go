package service

import (
	"context"

	"github.com/navid-fn/bestex/internal/models"
)

// MarketReader is implemented by the aggregator.
type MarketReader interface {
	GetBestPrice(ctx context.Context, pair string, side models.Side) (models.BestPrice, error)
	GetAggregatedMarketData(ctx context.Context, pair string) (models.AggregatedView, bool)
	MarketStats(ctx context.Context, pairs []string) models.MarketStats
}

// FailureCounter reads the per-venue execution failure counters.
type FailureCounter interface {
	ExecutionFailures(ctx context.Context, venueID string) int64
}

type MarketService struct {
	market   MarketReader
	failures FailureCounter
	venues   []string
	pairs    []string
}

func NewMarketService(market MarketReader, failures FailureCounter, venues, pairs []string) *MarketService {
	return &MarketService{
		market:   market,
		failures: failures,
		venues:   venues,
		pairs:    pairs,
	}
}

func (s *MarketService) GetAggregated(ctx context.Context, pair string) (models.AggregatedView, bool) {
	return s.market.GetAggregatedMarketData(ctx, pair)
}

func (s *MarketService) GetBestPrice(ctx context.Context, pair string, side models.Side) (models.BestPrice, error) {
	return s.market.GetBestPrice(ctx, pair, side)
}

// GetStats summarises the configured pairs.
func (s *MarketService) GetStats(ctx context.Context) models.MarketStats {
	return s.market.MarketStats(ctx, s.pairs)
}

// GetExecutionFailures returns recent failure counts of every venue.
func (s *MarketService) GetExecutionFailures(ctx context.Context) map[string]int64 {
	out := make(map[string]int64, len(s.venues))
	for _, v := range s.venues {
		out[v] = s.failures.ExecutionFailures(ctx, v)
	}
	return out
}
