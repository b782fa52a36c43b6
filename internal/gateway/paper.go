package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/navid-fn/bestex/internal/models"
)

// Paper fills every order at the requested price without touching a venue.
// Failures can be queued to rehearse fallback.
type Paper struct {
	venue string

	mu       sync.Mutex
	failures []error
	orders   []models.OrderRequest
}

func NewPaper(venue string) *Paper {
	return &Paper{venue: venue}
}

// FailNext makes the next len(errs) orders fail with errs, in order.
func (p *Paper) FailNext(errs ...error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, errs...)
}

func (p *Paper) PlaceOrder(ctx context.Context, req models.OrderRequest) (models.Fill, error) {
	if err := ctx.Err(); err != nil {
		return models.Fill{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, req)

	if len(p.failures) > 0 {
		err := p.failures[0]
		p.failures = p.failures[1:]
		return models.Fill{}, err
	}
	if req.Amount <= 0 || req.Price <= 0 {
		return models.Fill{}, fmt.Errorf("%w: %s needs a positive amount and price", ErrRejected, p.venue)
	}
	return models.Fill{
		OrderID:   p.venue + "-" + uuid.NewString(),
		FillPrice: req.Price,
	}, nil
}

// Orders returns every request received, failed ones included.
func (p *Paper) Orders() []models.OrderRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.OrderRequest(nil), p.orders...)
}
