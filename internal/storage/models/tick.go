// Package models defines the rows stored in ClickHouse.
package models

import "time"

// QuoteTick is one quote as written to the cache, kept for history.
type QuoteTick struct {
	// TickID is a SHA1 of venue, pair and event time, so replays dedupe.
	TickID string `json:"tick_id"`

	// Source is the venue id (e.g., "binance").
	Source string `json:"source"`

	// Symbol is the normalized pair (e.g., "BTC/USD").
	Symbol string `json:"symbol"`

	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Last      float64 `json:"last"`
	Volume24h float64 `json:"volume_24h"`
	High24h   float64 `json:"high_24h"`
	Low24h    float64 `json:"low_24h"`

	// EventTime is the venue's observation time.
	EventTime time.Time `json:"event_time"`

	// InsertedAt is when the row reached ClickHouse.
	InsertedAt time.Time `json:"inserted_at"`
}
