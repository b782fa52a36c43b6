// Package metrics defines the Prometheus collectors of the feed and routing pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bestex"

// Metrics groups every collector. Build one per process and pass it down.
type Metrics struct {
	FeedMessages      *prometheus.CounterVec
	FeedParseErrors   *prometheus.CounterVec
	FeedReconnects    *prometheus.CounterVec
	FeedFatal         *prometheus.CounterVec
	CacheWrites       *prometheus.CounterVec
	OutOfOrderQuotes  *prometheus.CounterVec
	HubDrops          *prometheus.CounterVec
	RoutingOutcomes   *prometheus.CounterVec
	ExecutionAttempts *prometheus.CounterVec
	GatherLatency     prometheus.Histogram
	IngestedTicks     prometheus.Counter
}

// New builds the collectors and registers them on reg. A nil reg leaves them
// unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FeedMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_messages_total",
			Help:      "Raw messages received per venue feed.",
		}, []string{"venue"}),
		FeedParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_parse_errors_total",
			Help:      "Messages dropped because they could not be normalized.",
		}, []string{"venue"}),
		FeedReconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_reconnects_total",
			Help:      "Reconnect attempts per venue feed.",
		}, []string{"venue"}),
		FeedFatal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fatal_total",
			Help:      "Feeds that gave up reconnecting.",
		}, []string{"venue"}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_cache_writes_total",
			Help:      "Quotes written to the quote cache.",
		}, []string{"venue"}),
		OutOfOrderQuotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_out_of_order_total",
			Help:      "Quotes discarded because a newer observation was already written.",
		}, []string{"venue"}),
		HubDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hub_dropped_total",
			Help:      "Price updates dropped because a subscriber buffer was full.",
		}, []string{"pair"}),
		RoutingOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_outcomes_total",
			Help:      "Routing attempts by terminal state.",
		}, []string{"state"}),
		ExecutionAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "execution_attempts_total",
			Help:      "Order placements per venue and result.",
		}, []string{"venue", "result"}),
		GatherLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_gather_seconds",
			Help:      "Time spent gathering per-venue quotes for one routing attempt.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		IngestedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_ticks_total",
			Help:      "Quote ticks persisted by the ingester.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.FeedMessages, m.FeedParseErrors, m.FeedReconnects, m.FeedFatal,
			m.CacheWrites, m.OutOfOrderQuotes, m.HubDrops,
			m.RoutingOutcomes, m.ExecutionAttempts, m.GatherLatency, m.IngestedTicks,
		)
	}
	return m
}
