package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navid-fn/bestex/internal/models"
)

func TestOrderFromFlags(t *testing.T) {
	order, err := orderFromFlags("eth-usd", "SELL", 2.5)
	require.NoError(t, err)
	assert.Equal(t, models.OrderIntent{Pair: "ETH/USD", Side: models.SideSell, Amount: 2.5, OrderType: models.OrderTypeMarket}, order)

	tests := []struct {
		name   string
		side   string
		amount float64
	}{
		{"bad side", "hold", 1},
		{"zero amount", "buy", 0},
		{"negative amount", "buy", -1},
		{"NaN amount", "buy", math.NaN()},
		{"infinite amount", "buy", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := orderFromFlags("BTC/USD", tt.side, tt.amount)
			assert.Error(t, err)
		})
	}
}
