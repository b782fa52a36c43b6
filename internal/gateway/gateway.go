// Package gateway holds the ExchangeGateway contract and the wrappers the
// router places orders through. Venue signing and authentication live in the
// concrete gateways, not here.
package gateway

import (
	"context"
	"errors"

	"github.com/navid-fn/bestex/internal/models"
)

// Gateway places one order on one venue. A returned error means the venue did
// not fill the order; the router then moves to the next venue.
type Gateway interface {
	PlaceOrder(ctx context.Context, req models.OrderRequest) (models.Fill, error)
}

var (
	ErrRejected    = errors.New("order rejected by venue")
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// Func adapts a plain function to Gateway.
type Func func(ctx context.Context, req models.OrderRequest) (models.Fill, error)

func (f Func) PlaceOrder(ctx context.Context, req models.OrderRequest) (models.Fill, error) {
	return f(ctx, req)
}
