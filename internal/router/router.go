// Package router finds the venue with the best effective price for an order
// and executes it there, falling back through the remaining venues one at a
// time when execution fails.
package router

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/navid-fn/bestex/internal/fanout"
	"github.com/navid-fn/bestex/internal/feed"
	"github.com/navid-fn/bestex/internal/gateway"
	"github.com/navid-fn/bestex/internal/metrics"
	"github.com/navid-fn/bestex/internal/models"
)

// Terminal states reported to metrics.
const (
	stateFilled      = "filled"
	stateExhausted   = "exhausted"
	stateNoLiquidity = "no_liquidity"
	stateCancelled   = "cancelled"
)

// QuoteStore is the part of the quote cache the router uses.
type QuoteStore interface {
	Get(ctx context.Context, venueID, pair string) (models.Quote, bool)
	RecordExecutionFailure(ctx context.Context, venueID string) int64
}

type Option func(*Router)

// WithSnapshotters registers REST fallbacks used when a venue's cached quote
// is absent and SnapshotOnMiss is set.
func WithSnapshotters(s map[string]feed.Snapshotter) Option {
	return func(r *Router) { r.snapshotters = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

type Router struct {
	config       Config
	quotes       QuoteStore
	gateways     map[string]gateway.Gateway
	snapshotters map[string]feed.Snapshotter
	venues       map[string]Venue
	metrics      *metrics.Metrics
	logger       *logrus.Entry
	now          func() time.Time
}

func New(config Config, quotes QuoteStore, gateways map[string]gateway.Gateway, logger *logrus.Logger, opts ...Option) (*Router, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	r := &Router{
		config:   config,
		quotes:   quotes,
		gateways: gateways,
		venues:   make(map[string]Venue, len(config.Venues)),
		logger:   logger.WithField("component", "router"),
		now:      time.Now,
	}
	for _, v := range config.Venues {
		if _, ok := gateways[v.ID]; !ok {
			r.logger.WithField("venue", v.ID).Warn("Venue has no gateway, it will not be routed to")
			continue
		}
		r.venues[v.ID] = v
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.New(nil)
	}
	return r, nil
}

// FindBestExecution gathers quotes once, then tries venues in score order
// until one fills. Each venue is tried at most once, and attempts never run
// in parallel. Cancelling ctx stops further fallbacks; a PlaceOrder call that
// is already in flight may still complete at the venue.
func (r *Router) FindBestExecution(ctx context.Context, order models.OrderIntent) (models.ExecutionResult, error) {
	order.Pair = models.NormalizePair(order.Pair)
	if order.OrderType == "" {
		order.OrderType = models.OrderTypeMarket
	}
	if err := order.Validate(); err != nil {
		return models.ExecutionResult{}, err
	}

	routeID := uuid.NewString()
	log := r.logger.WithFields(logrus.Fields{
		"route_id": routeID,
		"pair":     order.Pair,
		"side":     order.Side,
		"amount":   order.Amount,
	})

	quotes := r.gather(ctx, order)
	if len(quotes) == 0 {
		r.metrics.RoutingOutcomes.WithLabelValues(stateNoLiquidity).Inc()
		log.Info("No venue has a quote")
		return models.ExecutionResult{}, &models.NoLiquidityError{Pair: order.Pair, Side: order.Side}
	}

	candidates := make([]models.Quote, len(quotes))
	copy(candidates, quotes)

	var (
		failures  []*models.VenueExecutionError
		failed    []string
		lastVenue string
	)
	for len(candidates) > 0 {
		if err := ctx.Err(); err != nil {
			r.metrics.RoutingOutcomes.WithLabelValues(stateCancelled).Inc()
			return models.ExecutionResult{}, fmt.Errorf("routing %s cancelled after %d attempts: %w", routeID, len(failures), err)
		}

		ranked := r.score(candidates, order)
		chosen := ranked[0]
		lastVenue = chosen.VenueID

		log.WithFields(logrus.Fields{
			"venue":      chosen.VenueID,
			"score":      chosen.Score,
			"total_cost": chosen.TotalCost,
			"candidates": len(ranked),
		}).Info("Routing order")

		fill, err := r.execute(ctx, chosen, order)
		if err == nil {
			r.metrics.ExecutionAttempts.WithLabelValues(chosen.VenueID, "filled").Inc()
			r.metrics.RoutingOutcomes.WithLabelValues(stateFilled).Inc()
			return r.result(routeID, order, chosen, ranked, fill, len(failures)+1, failed), nil
		}

		venueErr := &models.VenueExecutionError{VenueID: chosen.VenueID, Err: err}
		failures = append(failures, venueErr)
		failed = append(failed, chosen.VenueID)
		r.metrics.ExecutionAttempts.WithLabelValues(chosen.VenueID, "failed").Inc()
		r.quotes.RecordExecutionFailure(context.WithoutCancel(ctx), chosen.VenueID)
		log.WithError(venueErr).Warn("Execution failed, falling back")

		candidates = without(candidates, chosen.VenueID)
	}

	r.metrics.RoutingOutcomes.WithLabelValues(stateExhausted).Inc()
	exhausted := &models.NoAlternativeExchangesError{Pair: order.Pair, LastVenue: lastVenue, Failures: failures}
	log.WithError(exhausted).Error("All venues failed")
	return models.ExecutionResult{}, exhausted
}

// gather reads every routable venue concurrently. Absent, unusable or slow
// venues are left out.
func (r *Router) gather(ctx context.Context, order models.OrderIntent) []models.Quote {
	start := time.Now()
	defer func() { r.metrics.GatherLatency.Observe(time.Since(start).Seconds()) }()

	ids := make([]string, 0, len(r.config.Venues))
	for _, v := range r.config.Venues {
		if _, ok := r.venues[v.ID]; ok {
			ids = append(ids, v.ID)
		}
	}

	results := fanout.Each(ctx, ids, r.config.GatherTimeout, func(ctx context.Context, venue string) (*models.Quote, error) {
		q, ok := r.quotes.Get(ctx, venue, order.Pair)
		if !ok {
			return r.snapshot(ctx, venue, order.Pair)
		}
		return &q, nil
	})

	quotes := make([]models.Quote, 0, len(results))
	for _, res := range results {
		switch {
		case res.Err != nil:
			r.logger.WithError(res.Err).WithField("venue", res.Key).Debug("Venue quote unavailable")
		case res.Value == nil:
		case PriceFor(*res.Value, order.Side) <= 0:
			r.logger.WithField("venue", res.Key).Debug("Venue quote has no price for this side")
		default:
			quotes = append(quotes, *res.Value)
		}
	}
	return quotes
}

func (r *Router) snapshot(ctx context.Context, venue, pair string) (*models.Quote, error) {
	if !r.config.SnapshotOnMiss {
		return nil, nil
	}
	s, ok := r.snapshotters[venue]
	if !ok {
		return nil, nil
	}
	q, err := s.Snapshot(ctx, pair)
	if err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *Router) score(quotes []models.Quote, order models.OrderIntent) []models.VenueQuoteForOrder {
	ranked := make([]models.VenueQuoteForOrder, 0, len(quotes))
	for _, q := range quotes {
		ranked = append(ranked, Cost(q, r.venues[q.VenueID], order, r.config.Weights))
	}
	Rank(ranked)
	return ranked
}

func (r *Router) execute(ctx context.Context, chosen models.VenueQuoteForOrder, order models.OrderIntent) (models.Fill, error) {
	execCtx, cancel := context.WithTimeout(ctx, r.config.ExecutionTimeout)
	defer cancel()

	return r.gateways[chosen.VenueID].PlaceOrder(execCtx, models.OrderRequest{
		Pair:      order.Pair,
		Side:      order.Side,
		Amount:    order.Amount,
		Price:     chosen.Price,
		OrderType: order.OrderType,
	})
}

func (r *Router) result(routeID string, order models.OrderIntent, chosen models.VenueQuoteForOrder,
	ranked []models.VenueQuoteForOrder, fill models.Fill, attempts int, failed []string) models.ExecutionResult {
	fillPrice := fill.FillPrice
	if fillPrice <= 0 {
		fillPrice = chosen.Price
	}
	notional := order.Amount * fillPrice
	fee := notional * r.venues[chosen.VenueID].FeeRate
	total := notional + fee
	if order.Side == models.SideSell {
		total = notional - fee
	}

	savings, savingsPercent := Savings(ranked, chosen, order.Side)
	return models.ExecutionResult{
		RouteID:        routeID,
		VenueID:        chosen.VenueID,
		OrderID:        fill.OrderID,
		FillPrice:      fillPrice,
		Fee:            fee,
		TotalCost:      total,
		SavingsVsWorst: savings,
		SavingsPercent: savingsPercent,
		Attempts:       attempts,
		FailedVenues:   failed,
		ExecutedAt:     r.now().UTC(),
	}
}

func without(quotes []models.Quote, venue string) []models.Quote {
	out := quotes[:0]
	for _, q := range quotes {
		if q.VenueID != venue {
			out = append(out, q)
		}
	}
	return out
}
