package router

import (
	"fmt"
	"time"
)

// Weights are the scoring policy. They are configuration, not derived.
type Weights struct {
	Price       float64
	Fee         float64
	Reliability float64
}

// Venue is what the router needs to price one venue.
type Venue struct {
	ID          string
	FeeRate     float64
	Reliability float64
}

type Config struct {
	Venues  []Venue
	Weights Weights

	// GatherTimeout bounds each per-venue quote read.
	GatherTimeout time.Duration

	// ExecutionTimeout bounds a single PlaceOrder call.
	ExecutionTimeout time.Duration

	// SnapshotOnMiss asks a venue's REST API when its cached quote is absent.
	SnapshotOnMiss bool
}

func DefaultConfig() Config {
	return Config{
		Weights:          Weights{Price: 0.7, Fee: 0.2, Reliability: 0.1},
		GatherTimeout:    500 * time.Millisecond,
		ExecutionTimeout: 10 * time.Second,
		SnapshotOnMiss:   true,
	}
}

func (c Config) Validate() error {
	if c.Weights.Price < 0 || c.Weights.Fee < 0 || c.Weights.Reliability < 0 {
		return fmt.Errorf("scoring weights must not be negative")
	}
	if c.Weights.Price+c.Weights.Fee+c.Weights.Reliability <= 0 {
		return fmt.Errorf("scoring weights must sum to more than zero")
	}
	if c.GatherTimeout <= 0 || c.ExecutionTimeout <= 0 {
		return fmt.Errorf("router timeouts must be positive")
	}
	seen := make(map[string]bool, len(c.Venues))
	for _, v := range c.Venues {
		if v.ID == "" || seen[v.ID] {
			return fmt.Errorf("venue ids must be unique and non-empty, got %q", v.ID)
		}
		seen[v.ID] = true
		if v.FeeRate < 0 {
			return fmt.Errorf("venue %s: negative fee rate", v.ID)
		}
	}
	return nil
}
