// Package coinbase reads the Coinbase Exchange "ticker" channel.
package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/navid-fn/bestex/internal/feed"
	"github.com/navid-fn/bestex/internal/models"
)

type Config struct {
	WSURL             string
	RESTURL           string
	RequestsPerSecond float64
}

func DefaultConfig() Config {
	return Config{WSURL: WSURL, RESTURL: RESTURL, RequestsPerSecond: 5}
}

type Driver struct {
	config  Config
	fetcher *feed.HTTPFetcher
}

func NewDriver(config Config) *Driver {
	if config.WSURL == "" {
		config.WSURL = WSURL
	}
	if config.RESTURL == "" {
		config.RESTURL = RESTURL
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 5
	}
	return &Driver{
		config:  config,
		fetcher: feed.NewHTTPFetcher(feed.DefaultHTTPConfig(config.RESTURL, config.RequestsPerSecond)),
	}
}

func (d *Driver) Venue() string { return venueID }

func (d *Driver) Endpoint([]string) string { return d.config.WSURL }

func (d *Driver) Subscribe(conn *websocket.Conn, pairs []string) error {
	products := make([]string, len(pairs))
	for i, p := range pairs {
		products[i] = feed.VenueSymbol(venueID, p)
	}
	return feed.WriteJSON(conn, subscribeMessage{
		Type:       "subscribe",
		ProductIDs: products,
		Channels:   []string{"ticker"},
	})
}

func (d *Driver) Parse(raw []byte) ([]models.Quote, error) {
	var msg feedMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}

	switch msg.Type {
	case "ticker":
	case "error":
		return nil, fmt.Errorf("venue error: %s", msg.Message)
	default:
		return nil, nil
	}

	v, err := feed.DecimalFields(map[string]string{
		"best_bid": msg.BestBid, "best_ask": msg.BestAsk, "price": msg.Price,
		"volume_24h": msg.Volume24h, "high_24h": msg.High24h, "low_24h": msg.Low24h,
	})
	if err != nil {
		return nil, err
	}
	observed, err := time.Parse(time.RFC3339Nano, msg.Time)
	if err != nil {
		return nil, fmt.Errorf("bad time %q: %w", msg.Time, err)
	}

	return []models.Quote{{
		VenueID:    venueID,
		Pair:       feed.NormalizeSymbol(venueID, msg.ProductID),
		BidPrice:   v["best_bid"],
		AskPrice:   v["best_ask"],
		LastPrice:  v["price"],
		Volume24h:  v["volume_24h"],
		High24h:    v["high_24h"],
		Low24h:     v["low_24h"],
		ObservedAt: observed.UTC(),
	}}, nil
}

// Snapshot reads /products/{id}/ticker. That endpoint has no 24h range, so
// High24h and Low24h stay zero.
func (d *Driver) Snapshot(ctx context.Context, pair string) (models.Quote, error) {
	product := feed.VenueSymbol(venueID, pair)
	body, err := d.fetcher.Get(ctx, "/products/"+url.PathEscape(product)+"/ticker")
	if err != nil {
		return models.Quote{}, fmt.Errorf("coinbase snapshot %s: %w", pair, err)
	}

	var t restTicker
	if err := json.Unmarshal(body, &t); err != nil {
		return models.Quote{}, fmt.Errorf("coinbase snapshot %s: %w", pair, err)
	}
	v, err := feed.DecimalFields(map[string]string{"bid": t.Bid, "ask": t.Ask, "price": t.Price, "volume": t.Volume})
	if err != nil {
		return models.Quote{}, err
	}

	observed := time.Now().UTC()
	if ts, err := time.Parse(time.RFC3339Nano, t.Time); err == nil {
		observed = ts.UTC()
	}
	return models.Quote{
		VenueID:    venueID,
		Pair:       models.NormalizePair(pair),
		BidPrice:   v["bid"],
		AskPrice:   v["ask"],
		LastPrice:  v["price"],
		Volume24h:  v["volume"],
		ObservedAt: observed,
	}, nil
}
