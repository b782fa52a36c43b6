package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// VenueInvalidator drops every cached quote of a venue.
type VenueInvalidator interface {
	InvalidateVenue(ctx context.Context, venueID string) int
}

// Manager runs one connector per venue. A connector that goes fatal does not
// stop the others; its cached quotes are invalidated right away instead of
// waiting for their TTL.
type Manager struct {
	connectors  []*Connector
	invalidator VenueInvalidator
	logger      *logrus.Entry
}

func NewManager(connectors []*Connector, invalidator VenueInvalidator, logger *logrus.Logger) *Manager {
	return &Manager{
		connectors:  connectors,
		invalidator: invalidator,
		logger:      logger.WithField("component", "feed-manager"),
	}
}

// Run blocks until every connector has returned. The result joins the
// errors of connectors that went fatal.
func (m *Manager) Run(ctx context.Context) error {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		result error
	)

	for _, c := range m.connectors {
		g.Go(func() error {
			err := c.Run(ctx)
			if err == nil {
				return nil
			}
			if errors.Is(err, ErrReconnectExhausted) && m.invalidator != nil {
				dropped := m.invalidator.InvalidateVenue(context.WithoutCancel(ctx), c.Venue())
				m.logger.WithFields(logrus.Fields{
					"venue":   c.Venue(),
					"dropped": dropped,
				}).Error("Venue feed is down, cached quotes invalidated")
			}
			mu.Lock()
			result = multierr.Append(result, err)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return result
}

func (m *Manager) Health() []Health {
	out := make([]Health, 0, len(m.connectors))
	for _, c := range m.connectors {
		out = append(out, c.Health())
	}
	return out
}
