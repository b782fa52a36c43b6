package configs

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navid-fn/bestex/internal/feed"
)

func TestAppLoadReadsEnvironment(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("ROUTER_WEIGHT_PRICE", "0.5")
	t.Setenv("ROUTER_GATHER_TIMEOUT", "750ms")
	t.Setenv("MARKET_PAIRS", "btc-usd, sol/usd")
	t.Setenv("KAFKA_TICKS_ENABLED", "true")
	t.Setenv("BATCH_SIZE", "not-a-number")

	cfg := AppLoad()
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 0.5, cfg.Router.Weights.Price)
	assert.Equal(t, 0.2, cfg.Router.Weights.Fee)
	assert.Equal(t, 750*time.Millisecond, cfg.Router.GatherTimeout)
	assert.Equal(t, []string{"btc-usd", "sol/usd"}, cfg.Aggregator.Pairs)
	assert.True(t, cfg.KafkaTicks.Enabled)
	assert.Equal(t, 500, cfg.Ingester.BatchSize, "bad ints fall back to the default")
}

func TestDefaultVenuesAreValid(t *testing.T) {
	venues := DefaultVenues()
	require.NoError(t, ValidateVenues(venues))
	assert.Equal(t, []string{"coinbase", "binance", "kraken"}, VenueIDs(venues))

	byID := map[string]VenueConfig{}
	for _, v := range venues {
		byID[v.ID] = v
	}
	assert.Equal(t, feed.PolicyFixed, byID["binance"].Reconnect.Kind)
	assert.Equal(t, feed.PolicyExponential, byID["coinbase"].Reconnect.Kind)
	assert.Equal(t, 10, byID["coinbase"].Reconnect.MaxAttempts)
	assert.Equal(t, 0.0026, byID["kraken"].FeeRate)
}

func TestParseVenues(t *testing.T) {
	data := []byte(`
venues:
  - id: binance
    pairs: [btc-usd]
    ttl: 3s
    fee_rate: 0.001
    reliability: 0.9
    reconnect:
      kind: fixed
      delay: 5s
  - id: kraken
    ws_url: wss://example.test/v2
    pairs: [ETH/USD]
    ttl: 4s
    fee_rate: 0.0026
    reliability: 0.95
    reconnect:
      kind: exponential
      delay: 2s
      max_attempts: 8
      max_delay: 1m
`)
	venues, err := ParseVenues(data)
	require.NoError(t, err)
	require.Len(t, venues, 2)

	assert.Equal(t, []string{"BTC/USD"}, venues[0].Pairs)
	assert.Equal(t, 3*time.Second, venues[0].TTL)
	assert.Equal(t, feed.FixedDelay(5*time.Second), venues[0].Reconnect)
	assert.Equal(t, "wss://example.test/v2", venues[1].WSURL)
	assert.Equal(t, time.Minute, venues[1].Reconnect.MaxDelay)
}

func TestValidateVenuesRejects(t *testing.T) {
	valid := func() VenueConfig {
		return VenueConfig{
			ID: "x", Pairs: []string{"BTC/USD"}, TTL: 2 * time.Second,
			FeeRate: 0.001, Reliability: 1, Reconnect: feed.FixedDelay(time.Second),
		}
	}

	tests := []struct {
		name   string
		mutate func(*VenueConfig)
	}{
		{"ttl too short", func(v *VenueConfig) { v.TTL = 500 * time.Millisecond }},
		{"ttl too long", func(v *VenueConfig) { v.TTL = 11 * time.Second }},
		{"negative fee", func(v *VenueConfig) { v.FeeRate = -0.1 }},
		{"reliability above one", func(v *VenueConfig) { v.Reliability = 1.5 }},
		{"no pairs", func(v *VenueConfig) { v.Pairs = nil }},
		{"no id", func(v *VenueConfig) { v.ID = "" }},
		{"exponential without cap", func(v *VenueConfig) { v.Reconnect = feed.CappedExponential(time.Second, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := valid()
			tt.mutate(&v)
			assert.Error(t, ValidateVenues([]VenueConfig{v}))
		})
	}

	assert.Error(t, ValidateVenues([]VenueConfig{valid(), valid()}), "duplicate ids")
}

func TestNewLogger(t *testing.T) {
	l := NewLogger(LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	l = NewLogger(LogConfig{Level: "loud"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestRouterVenues(t *testing.T) {
	rv := RouterVenues(DefaultVenues())
	require.Len(t, rv, 3)
	assert.Equal(t, "coinbase", rv[0].ID)
	assert.Equal(t, 0.004, rv[0].FeeRate)
	assert.Equal(t, 1.0, rv[0].Reliability)
}
