package feed

import (
	"sync"

	"github.com/navid-fn/bestex/internal/metrics"
	"github.com/navid-fn/bestex/internal/models"
)

// Hub broadcasts written quotes to subscribers keyed by pair. Delivery is
// non-blocking: a subscriber whose buffer is full misses that update.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[uint64]*Subscription
	nextID  uint64
	metrics *metrics.Metrics
}

// Subscription is one registration on the hub. Call Unsubscribe when done;
// C is closed afterwards.
type Subscription struct {
	Pair string
	C    <-chan models.Quote

	ch   chan models.Quote
	id   uint64
	hub  *Hub
	once sync.Once
}

func NewHub(m *metrics.Metrics) *Hub {
	if m == nil {
		m = metrics.New(nil)
	}
	return &Hub{
		subs:    make(map[string]map[uint64]*Subscription),
		metrics: m,
	}
}

// Subscribe registers for updates of pair with a buffer of the given size.
func (h *Hub) Subscribe(pair string, buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	pair = models.NormalizePair(pair)
	ch := make(chan models.Quote, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{Pair: pair, C: ch, ch: ch, id: h.nextID, hub: h}
	if h.subs[pair] == nil {
		h.subs[pair] = make(map[uint64]*Subscription)
	}
	h.subs[pair][sub.id] = sub
	return sub
}

// Unsubscribe removes the registration and closes C. Safe to call twice.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()

		if set := h.subs[s.Pair]; set != nil {
			delete(set, s.id)
			if len(set) == 0 {
				delete(h.subs, s.Pair)
			}
		}
		close(s.ch)
	})
}

// Publish hands q to every subscriber of its pair and returns how many took it.
func (h *Hub) Publish(q models.Quote) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subs[q.Pair] {
		select {
		case sub.ch <- q:
			delivered++
		default:
			h.metrics.HubDrops.WithLabelValues(q.Pair).Inc()
		}
	}
	return delivered
}

// Subscribers returns the number of live registrations for pair.
func (h *Hub) Subscribers(pair string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[models.NormalizePair(pair)])
}
