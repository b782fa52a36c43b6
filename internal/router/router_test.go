package router

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navid-fn/bestex/internal/feed"
	"github.com/navid-fn/bestex/internal/gateway"
	"github.com/navid-fn/bestex/internal/models"
)

type fakeStore struct {
	mu       sync.Mutex
	quotes   map[string]models.Quote
	hang     map[string]bool
	reads    int
	failures map[string]int64
}

func newFakeStore(quotes ...models.Quote) *fakeStore {
	s := &fakeStore{quotes: map[string]models.Quote{}, hang: map[string]bool{}, failures: map[string]int64{}}
	for _, q := range quotes {
		s.quotes[q.CacheKey()] = q
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, venue, pair string) (models.Quote, bool) {
	s.mu.Lock()
	s.reads++
	hang := s.hang[venue]
	q, ok := s.quotes[models.QuoteKey(venue, pair)]
	s.mu.Unlock()
	if hang {
		time.Sleep(time.Second)
	}
	return q, ok
}

func (s *fakeStore) RecordExecutionFailure(_ context.Context, venue string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[venue]++
	return s.failures[venue]
}

func (s *fakeStore) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

type fakeSnapshotter struct{ q models.Quote }

func (f fakeSnapshotter) Snapshot(context.Context, string) (models.Quote, error) { return f.q, nil }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func ask(venue string, price float64) models.Quote {
	return models.Quote{VenueID: venue, Pair: "BTC/USD", BidPrice: price - 10, AskPrice: price, ObservedAt: time.Now()}
}

func testConfig(venues ...Venue) Config {
	cfg := DefaultConfig()
	cfg.Venues = venues
	cfg.GatherTimeout = 100 * time.Millisecond
	cfg.ExecutionTimeout = time.Second
	return cfg
}

func paperGateways(ids ...string) (map[string]gateway.Gateway, map[string]*gateway.Paper) {
	gws := map[string]gateway.Gateway{}
	papers := map[string]*gateway.Paper{}
	for _, id := range ids {
		p := gateway.NewPaper(id)
		gws[id] = p
		papers[id] = p
	}
	return gws, papers
}

var buyOne = models.OrderIntent{Pair: "BTC/USD", Side: models.SideBuy, Amount: 1}

func TestLowerTotalCostWins(t *testing.T) {
	store := newFakeStore(ask("a", 30000), ask("b", 29950))
	gws, papers := paperGateways("a", "b")
	r, err := New(testConfig(
		Venue{ID: "a", FeeRate: 0.004, Reliability: 1},
		Venue{ID: "b", FeeRate: 0.001, Reliability: 1},
	), store, gws, quietLogger())
	require.NoError(t, err)

	res, err := r.FindBestExecution(context.Background(), buyOne)
	require.NoError(t, err)

	assert.Equal(t, "b", res.VenueID)
	assert.Equal(t, 29950.0, res.FillPrice)
	assert.InDelta(t, 29.95, res.Fee, 1e-9)
	assert.InDelta(t, 29979.95, res.TotalCost, 1e-9)
	assert.InDelta(t, 30120-29979.95, res.SavingsVsWorst, 1e-9)
	assert.InDelta(t, (30120-29979.95)/30120*100, res.SavingsPercent, 1e-9)
	assert.Equal(t, 1, res.Attempts)
	assert.NotEmpty(t, res.RouteID)
	assert.NotEmpty(t, res.OrderID)
	assert.Empty(t, papers["a"].Orders())
}

func TestCostModel(t *testing.T) {
	q := models.Quote{VenueID: "a", BidPrice: 29990, AskPrice: 30000, Volume24h: 12}
	w := Weights{Price: 0.7, Fee: 0.2, Reliability: 0.1}

	buy := Cost(q, Venue{ID: "a", FeeRate: 0.004, Reliability: 1}, buyOne, w)
	assert.Equal(t, 30000.0, buy.Price)
	assert.InDelta(t, 120, buy.Fee, 1e-9)
	assert.InDelta(t, 30120, buy.TotalCost, 1e-9)
	assert.InDelta(t, 0.4, buy.FeePercent, 1e-12)
	assert.Equal(t, 10.0, buy.Spread)
	assert.Equal(t, 12.0, buy.LiquidityHint)
	assert.InDelta(t, 0.7*(100.0/30000)+0.2*99.6+0.1*100, buy.Score, 1e-9)

	sell := Cost(q, Venue{ID: "a", FeeRate: 0.004, Reliability: 0.5}, models.OrderIntent{Side: models.SideSell, Amount: 2}, w)
	assert.Equal(t, 29990.0, sell.Price)
	assert.InDelta(t, 2*29990*(1-0.004), sell.TotalCost, 1e-6)
	assert.InDelta(t, 0.7*29990*100+0.2*99.6+0.1*50, sell.Score, 1e-6)
}

func TestSellPicksHighestBid(t *testing.T) {
	store := newFakeStore(ask("a", 100), ask("b", 105))
	gws, _ := paperGateways("a", "b")
	r, err := New(testConfig(Venue{ID: "a", FeeRate: 0.001, Reliability: 1}, Venue{ID: "b", FeeRate: 0.001, Reliability: 1}), store, gws, quietLogger())
	require.NoError(t, err)

	res, err := r.FindBestExecution(context.Background(), models.OrderIntent{Pair: "BTC/USD", Side: models.SideSell, Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, "b", res.VenueID)
	assert.Equal(t, 95.0, res.FillPrice)
	assert.InDelta(t, 5*(1-0.001), res.SavingsVsWorst, 1e-9)
}

func TestFallbackUsesSameQuotes(t *testing.T) {
	store := newFakeStore(ask("a", 100), ask("b", 101), ask("c", 102))
	gws, papers := paperGateways("a", "b", "c")
	papers["a"].FailNext(gateway.ErrRejected)

	r, err := New(testConfig(
		Venue{ID: "a", FeeRate: 0.001, Reliability: 1},
		Venue{ID: "b", FeeRate: 0.001, Reliability: 1},
		Venue{ID: "c", FeeRate: 0.001, Reliability: 1},
	), store, gws, quietLogger())
	require.NoError(t, err)

	res, err := r.FindBestExecution(context.Background(), buyOne)
	require.NoError(t, err)

	assert.Equal(t, "b", res.VenueID)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, []string{"a"}, res.FailedVenues)
	assert.Equal(t, 3, store.readCount(), "fallback must not requote")
	assert.Len(t, papers["a"].Orders(), 1)
	assert.Empty(t, papers["c"].Orders())
	assert.Equal(t, int64(1), store.failures["a"])
}

func TestExhaustionAfterExactlyNAttempts(t *testing.T) {
	store := newFakeStore(ask("a", 100), ask("b", 101), ask("c", 102))
	gws, papers := paperGateways("a", "b", "c", "d")
	boom := errors.New("venue down")
	for _, p := range papers {
		p.FailNext(boom, boom)
	}

	r, err := New(testConfig(
		Venue{ID: "a", FeeRate: 0.001, Reliability: 1},
		Venue{ID: "b", FeeRate: 0.001, Reliability: 1},
		Venue{ID: "c", FeeRate: 0.001, Reliability: 1},
		Venue{ID: "d", FeeRate: 0.001, Reliability: 1},
	), store, gws, quietLogger())
	require.NoError(t, err)

	_, err = r.FindBestExecution(context.Background(), buyOne)

	var exhausted *models.NoAlternativeExchangesError
	require.True(t, errors.As(err, &exhausted))
	assert.Len(t, exhausted.Failures, 3, "one attempt per venue with a quote")
	assert.Equal(t, "c", exhausted.LastVenue)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "venue down")

	var venueErr *models.VenueExecutionError
	assert.True(t, errors.As(err, &venueErr))

	for _, id := range []string{"a", "b", "c"} {
		assert.Len(t, papers[id].Orders(), 1, "venue %s tried more than once", id)
	}
	assert.Empty(t, papers["d"].Orders(), "venue without a quote is never tried")
}

func TestNoLiquidityBeforeExecution(t *testing.T) {
	gws, papers := paperGateways("a", "b")
	r, err := New(testConfig(Venue{ID: "a", Reliability: 1}, Venue{ID: "b", Reliability: 1}), newFakeStore(), gws, quietLogger())
	require.NoError(t, err)

	_, err = r.FindBestExecution(context.Background(), buyOne)
	var noLiq *models.NoLiquidityError
	require.True(t, errors.As(err, &noLiq))
	assert.Empty(t, papers["a"].Orders())
	assert.Empty(t, papers["b"].Orders())
}

func TestTiesFallBackInVenueOrder(t *testing.T) {
	run := func() []string {
		store := newFakeStore(ask("kraken", 100), ask("binance", 100), ask("coinbase", 100))
		gws, papers := paperGateways("kraken", "binance", "coinbase")
		for _, p := range papers {
			p.FailNext(gateway.ErrRejected)
		}
		r, err := New(testConfig(
			Venue{ID: "kraken", FeeRate: 0.001, Reliability: 1},
			Venue{ID: "binance", FeeRate: 0.001, Reliability: 1},
			Venue{ID: "coinbase", FeeRate: 0.001, Reliability: 1},
		), store, gws, quietLogger())
		require.NoError(t, err)

		_, err = r.FindBestExecution(context.Background(), buyOne)
		var exhausted *models.NoAlternativeExchangesError
		require.True(t, errors.As(err, &exhausted))

		var order []string
		for _, f := range exhausted.Failures {
			order = append(order, f.VenueID)
		}
		return order
	}

	first := run()
	assert.Equal(t, []string{"binance", "coinbase", "kraken"}, first)
	assert.Equal(t, first, run())
}

func TestHungVenueDoesNotBlockGathering(t *testing.T) {
	store := newFakeStore(ask("a", 100), ask("slow", 90))
	store.hang["slow"] = true
	gws, _ := paperGateways("a", "slow")
	r, err := New(testConfig(Venue{ID: "a", Reliability: 1}, Venue{ID: "slow", Reliability: 1}), store, gws, quietLogger())
	require.NoError(t, err)

	start := time.Now()
	res, err := r.FindBestExecution(context.Background(), buyOne)
	require.NoError(t, err)
	assert.Equal(t, "a", res.VenueID)
	assert.Less(t, time.Since(start), 800*time.Millisecond)
}

func TestSnapshotOnCacheMiss(t *testing.T) {
	gws, _ := paperGateways("a")
	snaps := map[string]feed.Snapshotter{"a": fakeSnapshotter{q: ask("a", 100)}}

	cfg := testConfig(Venue{ID: "a", Reliability: 1})
	r, err := New(cfg, newFakeStore(), gws, quietLogger(), WithSnapshotters(snaps))
	require.NoError(t, err)
	res, err := r.FindBestExecution(context.Background(), buyOne)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.FillPrice)

	cfg.SnapshotOnMiss = false
	r, err = New(cfg, newFakeStore(), gws, quietLogger(), WithSnapshotters(snaps))
	require.NoError(t, err)
	_, err = r.FindBestExecution(context.Background(), buyOne)
	var noLiq *models.NoLiquidityError
	assert.True(t, errors.As(err, &noLiq))
}

func TestCancelStopsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var bCalls int
	gws := map[string]gateway.Gateway{
		"a": gateway.Func(func(context.Context, models.OrderRequest) (models.Fill, error) {
			cancel()
			return models.Fill{}, gateway.ErrRejected
		}),
		"b": gateway.Func(func(context.Context, models.OrderRequest) (models.Fill, error) {
			bCalls++
			return models.Fill{OrderID: "x", FillPrice: 101}, nil
		}),
	}
	store := newFakeStore(ask("a", 100), ask("b", 101))
	r, err := New(testConfig(Venue{ID: "a", Reliability: 1}, Venue{ID: "b", Reliability: 1}), store, gws, quietLogger())
	require.NoError(t, err)

	_, err = r.FindBestExecution(ctx, buyOne)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, bCalls)
}

func TestInvalidOrderAndConfig(t *testing.T) {
	gws, papers := paperGateways("a")
	r, err := New(testConfig(Venue{ID: "a", Reliability: 1}), newFakeStore(ask("a", 100)), gws, quietLogger())
	require.NoError(t, err)

	for _, amount := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = r.FindBestExecution(context.Background(), models.OrderIntent{Pair: "BTC/USD", Side: models.SideBuy, Amount: amount})
		assert.Error(t, err, "amount %v", amount)
	}
	assert.Empty(t, papers["a"].Orders())

	cfg := testConfig(Venue{ID: "a"})
	cfg.Weights = Weights{}
	_, err = New(cfg, newFakeStore(), gws, quietLogger())
	assert.Error(t, err)
}

func TestSavingsIsSideAware(t *testing.T) {
	candidates := []models.VenueQuoteForOrder{
		{VenueID: "a", TotalCost: 200},
		{VenueID: "b", TotalCost: 150},
		{VenueID: "c", TotalCost: 100},
	}
	tests := []struct {
		name          string
		side          models.Side
		chosen        int
		amount, pcent float64
	}{
		{"buy against highest cost", models.SideBuy, 2, 100, 50},
		{"sell against lowest proceeds", models.SideSell, 0, 100, 100},
		{"chosen is worst", models.SideBuy, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, percent := Savings(candidates, candidates[tt.chosen], tt.side)
			assert.InDelta(t, tt.amount, amount, 1e-9)
			assert.InDelta(t, tt.pcent, percent, 1e-9)
		})
	}

	amount, percent := Savings(nil, models.VenueQuoteForOrder{}, models.SideBuy)
	assert.Zero(t, amount)
	assert.Zero(t, percent)

	zero := []models.VenueQuoteForOrder{{VenueID: "a"}, {VenueID: "b"}}
	_, percent = Savings(zero, zero[0], models.SideBuy)
	assert.Zero(t, percent)
}
