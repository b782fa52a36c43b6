package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Side of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide accepts "buy"/"sell" in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	}
	return "", fmt.Errorf("invalid side %q", s)
}

// OrderType is passed through to the gateway untouched.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// OrderIntent is what a caller wants to trade. It does not change during a routing attempt.
type OrderIntent struct {
	Pair      string    `json:"pair"`
	Side      Side      `json:"side"`
	Amount    float64   `json:"amount"`
	OrderType OrderType `json:"order_type"`
}

func (o OrderIntent) Validate() error {
	if o.Pair == "" {
		return fmt.Errorf("order without pair")
	}
	if o.Side != SideBuy && o.Side != SideSell {
		return fmt.Errorf("invalid side %q", o.Side)
	}
	if math.IsNaN(o.Amount) || math.IsInf(o.Amount, 0) || o.Amount <= 0 {
		return fmt.Errorf("amount must be a positive finite number, got %v", o.Amount)
	}
	return nil
}

// VenueQuoteForOrder is the per-venue cost of filling an OrderIntent.
// Computed fresh for every routing attempt and never cached.
type VenueQuoteForOrder struct {
	VenueID           string  `json:"venue_id"`
	Price             float64 `json:"price"`
	Fee               float64 `json:"fee"`
	FeePercent        float64 `json:"fee_percent"`
	TotalCost         float64 `json:"total_cost"`
	Spread            float64 `json:"spread"`
	LiquidityHint     float64 `json:"liquidity_hint"`
	ReliabilityWeight float64 `json:"reliability_weight"`
	Score             float64 `json:"score"`
}

// OrderRequest is what the router hands to an ExchangeGateway.
type OrderRequest struct {
	Pair      string    `json:"pair"`
	Side      Side      `json:"side"`
	Amount    float64   `json:"amount"`
	Price     float64   `json:"price"`
	OrderType OrderType `json:"order_type"`
}

// Fill is a gateway's acknowledgement of a placed order.
type Fill struct {
	OrderID   string  `json:"order_id"`
	FillPrice float64 `json:"fill_price"`
}

// ExecutionResult is returned once per routing attempt chain, fallbacks included.
type ExecutionResult struct {
	RouteID        string    `json:"route_id"`
	VenueID        string    `json:"venue_id"`
	OrderID        string    `json:"order_id"`
	FillPrice      float64   `json:"fill_price"`
	Fee            float64   `json:"fee"`
	TotalCost      float64   `json:"total_cost"`
	SavingsVsWorst float64   `json:"savings_vs_worst"`
	SavingsPercent float64   `json:"savings_percent"`
	Attempts       int       `json:"attempts"`
	FailedVenues   []string  `json:"failed_venues,omitempty"`
	ExecutedAt     time.Time `json:"executed_at"`
}
