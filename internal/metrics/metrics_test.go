package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FeedMessages.WithLabelValues("binance").Inc()
	m.RoutingOutcomes.WithLabelValues("filled").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedMessages.WithLabelValues("binance")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoutingOutcomes.WithLabelValues("filled")))

	require.Panics(t, func() { New(reg) }, "duplicate registration must be caught")
}

func TestNewWithoutRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}
