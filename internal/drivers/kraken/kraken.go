// Package kraken reads the "ticker" channel of Kraken's v2 WebSocket API.
package kraken

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/navid-fn/bestex/internal/feed"
	"github.com/navid-fn/bestex/internal/models"
)

const (
	WSURL   = "wss://ws.kraken.com/v2"
	venueID = "kraken"
)

type subscribeParams struct {
	Channel string   `json:"channel"`
	Symbol  []string `json:"symbol"`
}

type subscribeMessage struct {
	Method string          `json:"method"`
	Params subscribeParams `json:"params"`
}

type Driver struct {
	url string
	now func() time.Time
}

// NewDriver returns a driver for url, or the public endpoint when url is empty.
func NewDriver(url string) *Driver {
	if url == "" {
		url = WSURL
	}
	return &Driver{url: url, now: time.Now}
}

func (d *Driver) Venue() string { return venueID }

func (d *Driver) Endpoint([]string) string { return d.url }

func (d *Driver) Subscribe(conn *websocket.Conn, pairs []string) error {
	return feed.WriteJSON(conn, subscribeMessage{
		Method: "subscribe",
		Params: subscribeParams{Channel: "ticker", Symbol: pairs},
	})
}

// Parse handles ticker snapshots and updates. A frame may carry several
// symbols. Ticker rows without a timestamp are stamped with receive time.
func (d *Driver) Parse(raw []byte) ([]models.Quote, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid json")
	}
	msg := gjson.ParseBytes(raw)

	if msg.Get("method").Exists() {
		if ok := msg.Get("success"); ok.Exists() && !ok.Bool() {
			return nil, fmt.Errorf("venue error: %s", msg.Get("error").String())
		}
		return nil, nil
	}
	if msg.Get("channel").String() != "ticker" {
		return nil, nil
	}

	rows := msg.Get("data").Array()
	quotes := make([]models.Quote, 0, len(rows))
	for _, row := range rows {
		q, err := d.toQuote(row)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (d *Driver) toQuote(row gjson.Result) (models.Quote, error) {
	v, err := feed.DecimalFields(map[string]string{
		"bid":    row.Get("bid").Raw,
		"ask":    row.Get("ask").Raw,
		"last":   row.Get("last").Raw,
		"volume": row.Get("volume").Raw,
		"high":   row.Get("high").Raw,
		"low":    row.Get("low").Raw,
	})
	if err != nil {
		return models.Quote{}, err
	}

	observed := d.now().UTC()
	if ts := row.Get("timestamp"); ts.Exists() {
		parsed, err := time.Parse(time.RFC3339Nano, ts.String())
		if err != nil {
			return models.Quote{}, fmt.Errorf("bad timestamp %q: %w", ts.String(), err)
		}
		observed = parsed.UTC()
	}

	return models.Quote{
		VenueID:    venueID,
		Pair:       feed.NormalizeSymbol(venueID, row.Get("symbol").String()),
		BidPrice:   v["bid"],
		AskPrice:   v["ask"],
		LastPrice:  v["last"],
		Volume24h:  v["volume"],
		High24h:    v["high"],
		Low24h:     v["low"],
		ObservedAt: observed,
	}, nil
}
