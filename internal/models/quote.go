// Package models holds the value types shared by feeds, the aggregator and the router.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Quote is one venue's bid/ask/volume snapshot for a pair.
// A new Quote replaces the previous one for the same (venue, pair); it is never mutated.
type Quote struct {
	VenueID    string    `json:"venue_id"`
	Pair       string    `json:"pair"`
	BidPrice   float64   `json:"bid"`
	AskPrice   float64   `json:"ask"`
	LastPrice  float64   `json:"last"`
	Volume24h  float64   `json:"volume_24h"`
	High24h    float64   `json:"high_24h"`
	Low24h     float64   `json:"low_24h"`
	ObservedAt time.Time `json:"observed_at"`
}

// CacheKey returns the QuoteCache key of the quote, "{venueId}:{pair}".
func (q Quote) CacheKey() string {
	return QuoteKey(q.VenueID, q.Pair)
}

// Mid returns the midpoint of bid and ask, or zero when either side is missing.
func (q Quote) Mid() float64 {
	if q.BidPrice <= 0 || q.AskPrice <= 0 {
		return 0
	}
	return (q.BidPrice + q.AskPrice) / 2
}

// ReferencePrice is the price used for volume weighting: last trade, else mid.
func (q Quote) ReferencePrice() float64 {
	if q.LastPrice > 0 {
		return q.LastPrice
	}
	return q.Mid()
}

// Validate rejects quotes a reader could not use.
func (q Quote) Validate() error {
	switch {
	case q.VenueID == "":
		return fmt.Errorf("quote without venue")
	case q.Pair == "":
		return fmt.Errorf("quote without pair")
	case q.BidPrice < 0 || q.AskPrice < 0:
		return fmt.Errorf("negative price in %s quote for %s", q.VenueID, q.Pair)
	case q.BidPrice == 0 && q.AskPrice == 0 && q.LastPrice == 0:
		return fmt.Errorf("empty %s quote for %s", q.VenueID, q.Pair)
	case q.ObservedAt.IsZero():
		return fmt.Errorf("%s quote for %s has no event time", q.VenueID, q.Pair)
	}
	return nil
}

// QuoteKey builds the cache key for a venue and pair.
func QuoteKey(venueID, pair string) string {
	return venueID + ":" + pair
}

// NormalizePair upper-cases a pair and unifies the separator to "/".
// Example: "btc-usd" -> "BTC/USD"
func NormalizePair(pair string) string {
	p := strings.ToUpper(strings.TrimSpace(pair))
	return strings.NewReplacer("-", "/", "_", "/").Replace(p)
}

// AggregatedView is the consolidated market view of one pair across venues.
// It is recomputed on every call and never persisted.
type AggregatedView struct {
	Pair           string    `json:"pair"`
	VWAPPrice      float64   `json:"vwap_price"`
	BestBid        float64   `json:"best_bid"`
	BestAsk        float64   `json:"best_ask"`
	SpreadPercent  float64   `json:"spread_percent"`
	TotalVolume24h float64   `json:"total_volume_24h"`
	High24h        float64   `json:"high_24h"`
	Low24h         float64   `json:"low_24h"`
	SourceCount    int       `json:"source_count"`
	Sources        []string  `json:"sources"`
	ComputedAt     time.Time `json:"computed_at"`
}

// BestPrice is the best taker price for one side across present venues.
type BestPrice struct {
	Pair        string    `json:"pair"`
	Side        Side      `json:"side"`
	Price       float64   `json:"price"`
	VenueID     string    `json:"venue_id"`
	SourceCount int       `json:"source_count"`
	ComputedAt  time.Time `json:"computed_at"`
}

// MarketStats summarises several pairs at once.
type MarketStats struct {
	Pairs         []AggregatedView `json:"pairs"`
	TotalVolume   float64          `json:"total_volume"`
	AvgSpread     float64          `json:"avg_spread_percent"`
	ActiveSources int              `json:"active_sources"`
	ComputedAt    time.Time        `json:"computed_at"`
}
