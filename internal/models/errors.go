package models

import "fmt"

// NoLiquidityError means no venue had a present quote for the pair.
// The core never retries it; callers may try again later.
type NoLiquidityError struct {
	Pair string
	Side Side
}

func (e *NoLiquidityError) Error() string {
	if e.Side == "" {
		return fmt.Sprintf("no liquidity available for %s", e.Pair)
	}
	return fmt.Sprintf("no liquidity available for %s %s", e.Side, e.Pair)
}

// VenueExecutionError is one venue rejecting or failing an order.
type VenueExecutionError struct {
	VenueID string
	Err     error
}

func (e *VenueExecutionError) Error() string {
	return fmt.Sprintf("execution on %s failed: %v", e.VenueID, e.Err)
}

func (e *VenueExecutionError) Unwrap() error { return e.Err }

// NoAlternativeExchangesError is returned when every candidate venue failed execution.
type NoAlternativeExchangesError struct {
	Pair      string
	LastVenue string
	Failures  []*VenueExecutionError
}

func (e *NoAlternativeExchangesError) Error() string {
	reason := "no candidate venues"
	if n := len(e.Failures); n > 0 {
		reason = e.Failures[n-1].Err.Error()
	}
	return fmt.Sprintf("no alternative exchanges available for %s after %d attempts (last venue %q: %s)",
		e.Pair, len(e.Failures), e.LastVenue, reason)
}

// Unwrap exposes every venue failure to errors.Is / errors.As.
func (e *NoAlternativeExchangesError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
