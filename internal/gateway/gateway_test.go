package gateway

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navid-fn/bestex/internal/models"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var order = models.OrderRequest{Pair: "BTC/USD", Side: models.SideBuy, Amount: 1, Price: 100, OrderType: models.OrderTypeMarket}

func TestPaperFillsAtRequestedPrice(t *testing.T) {
	p := NewPaper("kraken")
	fill, err := p.PlaceOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, 100.0, fill.FillPrice)
	assert.True(t, strings.HasPrefix(fill.OrderID, "kraken-"))
	assert.Len(t, p.Orders(), 1)
}

func TestPaperQueuedFailures(t *testing.T) {
	p := NewPaper("kraken")
	boom := errors.New("boom")
	p.FailNext(boom, ErrRejected)

	_, err := p.PlaceOrder(context.Background(), order)
	assert.ErrorIs(t, err, boom)
	_, err = p.PlaceOrder(context.Background(), order)
	assert.ErrorIs(t, err, ErrRejected)
	_, err = p.PlaceOrder(context.Background(), order)
	assert.NoError(t, err)
}

func TestPaperRejectsEmptyOrder(t *testing.T) {
	_, err := NewPaper("x").PlaceOrder(context.Background(), models.OrderRequest{Pair: "BTC/USD"})
	assert.ErrorIs(t, err, ErrRejected)
}

func TestCircuitBreakerLifecycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(BreakerConfig{MaxFailures: 2, Cooldown: time.Minute, SuccessThreshold: 2}, quietLogger().WithField("venue", "x"))
	cb.now = func() time.Time { return now }

	fail := errors.New("fail")
	cb.Record(fail)
	assert.Equal(t, BreakerClosed, cb.State())
	cb.Record(fail)
	assert.Equal(t, BreakerOpen, cb.State())
	assert.False(t, cb.Allow())

	now = now.Add(time.Minute)
	assert.True(t, cb.Allow())
	assert.Equal(t, BreakerHalfOpen, cb.State())

	cb.Record(fail)
	assert.Equal(t, BreakerOpen, cb.State(), "failure while half-open reopens")

	now = now.Add(time.Minute)
	require.True(t, cb.Allow())
	cb.Record(nil)
	assert.Equal(t, BreakerHalfOpen, cb.State())
	cb.Record(nil)
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestGuardedOpenBreakerSkipsVenue(t *testing.T) {
	calls := 0
	next := Func(func(context.Context, models.OrderRequest) (models.Fill, error) {
		calls++
		return models.Fill{}, ErrRejected
	})
	g := NewGuarded("binance", next, GuardConfig{Breaker: BreakerConfig{MaxFailures: 1, Cooldown: time.Hour}}, quietLogger())

	_, err := g.PlaceOrder(context.Background(), order)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, BreakerOpen, g.BreakerState())

	_, err = g.PlaceOrder(context.Background(), order)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 1, calls, "open breaker must not reach the venue")
}

func TestGuardedRateLimitHonoursContext(t *testing.T) {
	g := NewGuarded("binance", NewPaper("binance"), GuardConfig{RequestsPerSecond: 0.001, Burst: 1}, quietLogger())

	_, err := g.PlaceOrder(context.Background(), order)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.PlaceOrder(ctx, order)
	assert.Error(t, err)
}
