// Package binance streams 24hr tickers from Binance's combined stream endpoint.
// Symbols are subscribed through the URL, so there is no subscribe frame.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
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
	return Config{WSURL: WSURL, RESTURL: RESTURL, RequestsPerSecond: 10}
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
		config.RequestsPerSecond = 10
	}
	return &Driver{
		config:  config,
		fetcher: feed.NewHTTPFetcher(feed.DefaultHTTPConfig(config.RESTURL, config.RequestsPerSecond)),
	}
}

func (d *Driver) Venue() string { return venueID }

// Endpoint builds the combined stream URL, e.g. .../stream?streams=btcusdt@ticker/ethusdt@ticker
func (d *Driver) Endpoint(pairs []string) string {
	streams := make([]string, len(pairs))
	for i, p := range pairs {
		streams[i] = strings.ToLower(feed.VenueSymbol(venueID, p)) + "@ticker"
	}
	return d.config.WSURL + "?streams=" + strings.Join(streams, "/")
}

func (d *Driver) Subscribe(*websocket.Conn, []string) error { return nil }

func (d *Driver) Parse(raw []byte) ([]models.Quote, error) {
	var msg combinedMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	if msg.Data.Event != "24hrTicker" {
		return nil, nil
	}

	t := msg.Data
	q, err := toQuote(t.Symbol, t.Bid, t.Ask, t.Last, t.Volume, t.High, t.Low)
	if err != nil {
		return nil, err
	}
	q.ObservedAt = feed.MillisToTime(t.EventTime)
	return []models.Quote{q}, nil
}

// Snapshot reads the current 24hr ticker over REST.
func (d *Driver) Snapshot(ctx context.Context, pair string) (models.Quote, error) {
	path := "/api/v3/ticker/24hr?symbol=" + url.QueryEscape(feed.VenueSymbol(venueID, pair))
	body, err := d.fetcher.Get(ctx, path)
	if err != nil {
		return models.Quote{}, fmt.Errorf("binance snapshot %s: %w", pair, err)
	}

	var t restTicker
	if err := json.Unmarshal(body, &t); err != nil {
		return models.Quote{}, fmt.Errorf("binance snapshot %s: %w", pair, err)
	}
	q, err := toQuote(t.Symbol, t.Bid, t.Ask, t.Last, t.Volume, t.High, t.Low)
	if err != nil {
		return models.Quote{}, err
	}
	q.ObservedAt = time.Now().UTC()
	if t.CloseTime > 0 {
		q.ObservedAt = feed.MillisToTime(t.CloseTime)
	}
	return q, nil
}

func toQuote(symbol, bid, ask, last, volume, high, low string) (models.Quote, error) {
	v, err := feed.DecimalFields(map[string]string{
		"bid": bid, "ask": ask, "last": last, "volume": volume, "high": high, "low": low,
	})
	if err != nil {
		return models.Quote{}, err
	}
	return models.Quote{
		VenueID:   venueID,
		Pair:      feed.NormalizeSymbol(venueID, symbol),
		BidPrice:  v["bid"],
		AskPrice:  v["ask"],
		LastPrice: v["last"],
		Volume24h: v["volume"],
		High24h:   v["high"],
		Low24h:    v["low"],
	}, nil
}
