// Package drivers builds the venue driver for a configured venue.
package drivers

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/navid-fn/bestex/configs"
	"github.com/navid-fn/bestex/internal/drivers/binance"
	"github.com/navid-fn/bestex/internal/drivers/coinbase"
	"github.com/navid-fn/bestex/internal/drivers/kraken"
	"github.com/navid-fn/bestex/internal/feed"
)

// New returns the stream driver of v and, for venues with a REST ticker, a
// Snapshotter. snap is nil for stream-only venues.
func New(v configs.VenueConfig) (driver feed.Driver, snap feed.Snapshotter, err error) {
	switch v.ID {
	case "binance":
		d := binance.NewDriver(binance.Config{WSURL: v.WSURL, RESTURL: v.RESTURL})
		return d, d, nil
	case "coinbase":
		d := coinbase.NewDriver(coinbase.Config{WSURL: v.WSURL, RESTURL: v.RESTURL})
		return d, d, nil
	case "kraken":
		return kraken.NewDriver(v.WSURL), nil, nil
	}
	return nil, nil, fmt.Errorf("no driver for venue %q", v.ID)
}

// Snapshotters returns the REST fallbacks of every venue that has one.
func Snapshotters(venues []configs.VenueConfig) (map[string]feed.Snapshotter, error) {
	out := make(map[string]feed.Snapshotter)
	for _, v := range venues {
		_, snap, err := New(v)
		if err != nil {
			return nil, err
		}
		if snap != nil {
			out[v.ID] = snap
		}
	}
	return out, nil
}

// Connectors builds one feed connector per venue, all writing to cache.
func Connectors(venues []configs.VenueConfig, cache feed.QuoteWriter, logger *logrus.Logger, opts ...feed.Option) ([]*feed.Connector, error) {
	connectors := make([]*feed.Connector, 0, len(venues))
	for _, v := range venues {
		driver, _, err := New(v)
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, feed.NewConnector(driver, feed.ConnectorConfig{
			Pairs:  v.Pairs,
			TTL:    v.TTL,
			Policy: v.Reconnect,
		}, cache, logger, opts...))
	}
	return connectors, nil
}
