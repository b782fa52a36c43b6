package feed

import (
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// PolicyKind selects how a connector waits between reconnects.
type PolicyKind string

const (
	// PolicyFixed retries forever with a constant delay.
	PolicyFixed PolicyKind = "fixed"
	// PolicyExponential waits base*2^attempt and stops after MaxAttempts,
	// leaving the connector in a fatal state.
	PolicyExponential PolicyKind = "exponential"
)

// ReconnectPolicy is chosen per venue.
type ReconnectPolicy struct {
	Kind        PolicyKind    `yaml:"kind"`
	Delay       time.Duration `yaml:"delay"`
	MaxAttempts int           `yaml:"max_attempts"`
	// MaxDelay caps a single exponential wait; zero means uncapped.
	MaxDelay time.Duration `yaml:"max_delay"`
}

func FixedDelay(d time.Duration) ReconnectPolicy {
	return ReconnectPolicy{Kind: PolicyFixed, Delay: d}
}

func CappedExponential(base time.Duration, maxAttempts int) ReconnectPolicy {
	return ReconnectPolicy{Kind: PolicyExponential, Delay: base, MaxAttempts: maxAttempts}
}

func (p ReconnectPolicy) Validate() error {
	if p.Delay <= 0 {
		return fmt.Errorf("reconnect delay must be positive, got %v", p.Delay)
	}
	switch p.Kind {
	case PolicyFixed:
		return nil
	case PolicyExponential:
		if p.MaxAttempts <= 0 {
			return fmt.Errorf("exponential reconnect needs max attempts > 0")
		}
		return nil
	}
	return fmt.Errorf("unknown reconnect policy %q", p.Kind)
}

// Backoff returns a fresh delay sequence. Connectors take a new one after every
// successful connection.
func (p ReconnectPolicy) Backoff() retry.Backoff {
	if p.Kind == PolicyExponential {
		b := retry.NewExponential(p.Delay)
		if p.MaxDelay > 0 {
			b = retry.WithCappedDuration(p.MaxDelay, b)
		}
		return retry.WithMaxRetries(uint64(p.MaxAttempts), b)
	}
	return retry.NewConstant(p.Delay)
}

func (p ReconnectPolicy) String() string {
	if p.Kind == PolicyExponential {
		return fmt.Sprintf("exponential(base=%s, max_attempts=%d)", p.Delay, p.MaxAttempts)
	}
	return fmt.Sprintf("fixed(%s)", p.Delay)
}
