package gateway

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// BreakerState is the state of a CircuitBreaker.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerOpen:
		return "OPEN"
	case BreakerHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerConfig holds configuration for the circuit breaker
type BreakerConfig struct {
	MaxFailures      int           // Consecutive failures before opening
	Cooldown         time.Duration // Time spent open before a trial order is let through
	SuccessThreshold int           // Consecutive successes needed to close from half-open
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxFailures: 5, Cooldown: 30 * time.Second, SuccessThreshold: 2}
}

// CircuitBreaker stops sending orders to a venue that keeps failing.
type CircuitBreaker struct {
	config      BreakerConfig
	state       BreakerState
	failures    int
	successes   int
	lastFailure time.Time
	mu          sync.Mutex
	now         func() time.Time
	logger      *logrus.Entry
}

func NewCircuitBreaker(config BreakerConfig, logger *logrus.Entry) *CircuitBreaker {
	def := DefaultBreakerConfig()
	if config.MaxFailures <= 0 {
		config.MaxFailures = def.MaxFailures
	}
	if config.Cooldown <= 0 {
		config.Cooldown = def.Cooldown
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	return &CircuitBreaker{
		config: config,
		state:  BreakerClosed,
		now:    time.Now,
		logger: logger,
	}
}

// Allow reports whether an order may be sent now. An open breaker turns
// half-open once the cooldown has passed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed, BreakerHalfOpen:
		return true
	case BreakerOpen:
		if cb.now().Sub(cb.lastFailure) >= cb.config.Cooldown {
			cb.setState(BreakerHalfOpen)
			cb.successes = 0
			return true
		}
	}
	return false
}

// Record feeds the outcome of an order back into the breaker.
func (cb *CircuitBreaker) Record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.successes = 0
		cb.lastFailure = cb.now()

		switch cb.state {
		case BreakerClosed:
			if cb.failures >= cb.config.MaxFailures {
				cb.setState(BreakerOpen)
			}
		case BreakerHalfOpen:
			cb.setState(BreakerOpen)
		}
		return
	}

	cb.failures = 0
	cb.successes++
	if cb.state == BreakerHalfOpen && cb.successes >= cb.config.SuccessThreshold {
		cb.setState(BreakerClosed)
	}
}

func (cb *CircuitBreaker) setState(state BreakerState) {
	if cb.state == state {
		return
	}
	cb.logger.WithFields(logrus.Fields{
		"from":     cb.state.String(),
		"to":       state.String(),
		"failures": cb.failures,
	}).Warn("Circuit breaker state changed")
	cb.state = state
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
