package router

import (
	"math"
	"sort"

	"github.com/navid-fn/bestex/internal/models"
)

// PriceFor returns the taker price of side: ask for buys, bid for sells.
func PriceFor(q models.Quote, side models.Side) float64 {
	if side == models.SideSell {
		return q.BidPrice
	}
	return q.AskPrice
}

// Cost prices an order on one venue.
//
//	fee       = amount * price * feeRate
//	totalCost = amount*price + fee (buy), amount*price - fee (sell)
//	score     = wP*priceScore + wF*feeScore + wR*reliability*100
//
// priceScore is 100/price for buys and price*100 for sells, and
// feeScore is (1 - feeRate) * 100.
func Cost(q models.Quote, venue Venue, order models.OrderIntent, w Weights) models.VenueQuoteForOrder {
	price := PriceFor(q, order.Side)
	notional := order.Amount * price
	fee := notional * venue.FeeRate

	total := notional + fee
	priceScore := 100 / price
	if order.Side == models.SideSell {
		total = notional - fee
		priceScore = price * 100
	}
	feeScore := (1 - venue.FeeRate) * 100

	var spread float64
	if q.BidPrice > 0 && q.AskPrice > 0 {
		spread = q.AskPrice - q.BidPrice
	}

	return models.VenueQuoteForOrder{
		VenueID:           venue.ID,
		Price:             price,
		Fee:               fee,
		FeePercent:        venue.FeeRate * 100,
		TotalCost:         total,
		Spread:            spread,
		LiquidityHint:     q.Volume24h,
		ReliabilityWeight: venue.Reliability,
		Score:             w.Price*priceScore + w.Fee*feeScore + w.Reliability*venue.Reliability*100,
	}
}

// Rank sorts candidates by score, highest first. Equal scores are ordered by
// venue id so the fallback order is reproducible.
func Rank(candidates []models.VenueQuoteForOrder) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].VenueID < candidates[j].VenueID
	})
}

// Savings is how much the chosen venue saves over the worst candidate:
// the highest cost for buys, the lowest proceeds for sells. percent is
// relative to the worst total and zero when that total is zero.
func Savings(candidates []models.VenueQuoteForOrder, chosen models.VenueQuoteForOrder, side models.Side) (amount, percent float64) {
	if len(candidates) == 0 {
		return 0, 0
	}
	worst := candidates[0].TotalCost
	for _, c := range candidates[1:] {
		if side == models.SideBuy && c.TotalCost > worst ||
			side == models.SideSell && c.TotalCost < worst {
			worst = c.TotalCost
		}
	}
	amount = math.Abs(worst - chosen.TotalCost)
	if worst != 0 {
		percent = amount / math.Abs(worst) * 100
	}
	return amount, percent
}
