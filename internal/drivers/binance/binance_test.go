package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickerFrame = `{"stream":"btcusdt@ticker","data":{"e":"24hrTicker","E":1704067200000,"s":"BTCUSDT",
"c":"42000.10","b":"41999.90","a":"42000.20","v":"1234.5","h":"43000","l":"41000"}}`

func TestEndpoint(t *testing.T) {
	d := NewDriver(DefaultConfig())
	assert.Equal(t,
		"wss://stream.binance.com:9443/stream?streams=btcusdt@ticker/ethusdt@ticker",
		d.Endpoint([]string{"BTC/USD", "ETH/USD"}))
}

func TestParse(t *testing.T) {
	d := NewDriver(DefaultConfig())

	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"ticker", tickerFrame, 1, false},
		{"other event", `{"stream":"x","data":{"e":"trade"}}`, 0, false},
		{"not json", `nope`, 0, true},
		{"bad price", `{"stream":"x","data":{"e":"24hrTicker","s":"BTCUSDT","b":"?"}}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotes, err := d.Parse([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, quotes, tt.want)
		})
	}

	quotes, err := d.Parse([]byte(tickerFrame))
	require.NoError(t, err)
	q := quotes[0]
	assert.Equal(t, "binance", q.VenueID)
	assert.Equal(t, "BTC/USD", q.Pair)
	assert.Equal(t, 41999.90, q.BidPrice)
	assert.Equal(t, 42000.20, q.AskPrice)
	assert.Equal(t, 42000.10, q.LastPrice)
	assert.Equal(t, 1234.5, q.Volume24h)
	assert.Equal(t, 43000.0, q.High24h)
	assert.Equal(t, 41000.0, q.Low24h)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), q.ObservedAt)
	assert.NoError(t, q.Validate())
}

func TestSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"ETHUSDT","bidPrice":"2000.1","askPrice":"2000.3","lastPrice":"2000.2",
"volume":"10","highPrice":"2100","lowPrice":"1900","closeTime":1704067200000}`))
	}))
	defer srv.Close()

	d := NewDriver(Config{RESTURL: srv.URL, RequestsPerSecond: 100})
	q, err := d.Snapshot(context.Background(), "ETH/USD")
	require.NoError(t, err)
	assert.Equal(t, "ETH/USD", q.Pair)
	assert.Equal(t, 2000.3, q.AskPrice)
	assert.False(t, q.ObservedAt.IsZero())
}

func TestSnapshotNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	d := NewDriver(Config{RESTURL: srv.URL, RequestsPerSecond: 100})
	_, err := d.Snapshot(context.Background(), "BTC/USD")
	assert.Error(t, err)
}
