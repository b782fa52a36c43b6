package gateway

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/navid-fn/bestex/internal/models"
)

// GuardConfig limits how a venue's gateway is used.
type GuardConfig struct {
	// RequestsPerSecond caps order placement; zero disables the limiter.
	RequestsPerSecond float64
	Burst             int
	Breaker           BreakerConfig
}

// Guarded wraps a Gateway with a rate limiter and a circuit breaker. An open
// breaker fails the order immediately, so the router falls back without a
// remote call.
type Guarded struct {
	venue   string
	next    Gateway
	limiter *rate.Limiter
	breaker *CircuitBreaker
}

func NewGuarded(venue string, next Gateway, config GuardConfig, logger *logrus.Logger) *Guarded {
	g := &Guarded{
		venue:   venue,
		next:    next,
		breaker: NewCircuitBreaker(config.Breaker, logger.WithFields(logrus.Fields{"component": "gateway", "venue": venue})),
	}
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}
	return g
}

func (g *Guarded) PlaceOrder(ctx context.Context, req models.OrderRequest) (models.Fill, error) {
	if !g.breaker.Allow() {
		return models.Fill{}, fmt.Errorf("%s: %w", g.venue, ErrCircuitOpen)
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return models.Fill{}, fmt.Errorf("%s rate limit: %w", g.venue, err)
		}
	}

	fill, err := g.next.PlaceOrder(ctx, req)
	g.breaker.Record(err)
	return fill, err
}

func (g *Guarded) BreakerState() BreakerState {
	return g.breaker.State()
}
