package feed

import (
	"errors"
	"fmt"
)

// ErrReconnectExhausted is returned by Connector.Run when a capped reconnect
// policy runs out of attempts. The connector's health is fatal from then on.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// ConnectionError is a transient transport failure. It only drives the
// reconnect policy and never reaches aggregator or router callers.
type ConnectionError struct {
	Venue string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection: %v", e.Venue, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ParseError is a single message that could not be normalized. The message is
// dropped and the connection stays open.
type ParseError struct {
	Venue string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s message: %v", e.Venue, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
