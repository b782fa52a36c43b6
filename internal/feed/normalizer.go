package feed

import (
	"strings"

	"github.com/navid-fn/bestex/internal/models"
)

// SymbolRule defines a transformation rule for normalizing venue-specific symbols.
// Venues use different formats: BTCUSDT, BTC-USD, BTC/USD.
// We normalize all to the standard format: BTC/USD
type SymbolRule struct {
	// Suffix is the venue-specific suffix to match (e.g., "USDT", "-USD")
	Suffix string

	// Replacement is the normalized suffix (e.g., "/USD")
	Replacement string
}

// DefaultSymbolRules maps venue ids to their normalization rules.
// Add new venues here when implementing new drivers.
var DefaultSymbolRules = map[string][]SymbolRule{
	"binance": {
		{Suffix: "USDT", Replacement: "/USD"}, // Binance quotes dollars in USDT
		{Suffix: "USDC", Replacement: "/USDC"},
		{Suffix: "EUR", Replacement: "/EUR"},
	},
	"coinbase": {
		{Suffix: "-USD", Replacement: "/USD"},
		{Suffix: "-USDC", Replacement: "/USDC"},
		{Suffix: "-EUR", Replacement: "/EUR"},
		{Suffix: "-GBP", Replacement: "/GBP"},
	},
}

// NormalizeSymbol converts a venue-specific symbol to our standard format.
// Example: "BTCUSDT" (binance) -> "BTC/USD"
// Example: "ETH-USD" (coinbase) -> "ETH/USD"
// Returns the upper-cased symbol if no matching rule is found.
func NormalizeSymbol(venue, symbol string) string {
	symbol = strings.ToUpper(symbol)
	for _, rule := range DefaultSymbolRules[venue] {
		if strings.HasSuffix(symbol, rule.Suffix) {
			return strings.TrimSuffix(symbol, rule.Suffix) + rule.Replacement
		}
	}
	return symbol
}

// VenueSymbol is the inverse of NormalizeSymbol.
// Example: "BTC/USD" (binance) -> "BTCUSDT"
func VenueSymbol(venue, pair string) string {
	pair = models.NormalizePair(pair)
	for _, rule := range DefaultSymbolRules[venue] {
		if strings.HasSuffix(pair, rule.Replacement) {
			return strings.TrimSuffix(pair, rule.Replacement) + rule.Suffix
		}
	}
	return pair
}
