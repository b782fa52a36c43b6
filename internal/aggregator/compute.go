package aggregator

import (
	"time"

	"github.com/navid-fn/bestex/internal/models"
)

// BestPrice picks min(ask) for buy and max(bid) for sell. Sides with a zero
// price are skipped. On equal prices the earlier quote wins.
func BestPrice(quotes []models.Quote, side models.Side) (models.BestPrice, bool) {
	var (
		best  models.BestPrice
		found bool
	)
	for _, q := range quotes {
		price := q.AskPrice
		if side == models.SideSell {
			price = q.BidPrice
		}
		if price <= 0 {
			continue
		}
		better := side == models.SideBuy && price < best.Price ||
			side == models.SideSell && price > best.Price
		if !found || better {
			best.Price = price
			best.VenueID = q.VenueID
			found = true
		}
		best.SourceCount++
	}
	best.Side = side
	return best, found
}

// Aggregate builds the consolidated view of quotes, which must be non-empty.
//
// VWAP weights each venue's reference price (last, else mid) by its 24h
// volume. When the total volume is zero the VWAP is undefined and the plain
// average of the reference prices is used instead.
func Aggregate(pair string, quotes []models.Quote, now time.Time) models.AggregatedView {
	view := models.AggregatedView{
		Pair:        pair,
		SourceCount: len(quotes),
		Sources:     make([]string, 0, len(quotes)),
		ComputedAt:  now,
	}

	var (
		weighted, volume float64
		priceSum         float64
		priced           int
	)
	for _, q := range quotes {
		view.Sources = append(view.Sources, q.VenueID)
		view.TotalVolume24h += q.Volume24h

		if p := q.ReferencePrice(); p > 0 {
			weighted += p * q.Volume24h
			volume += q.Volume24h
			priceSum += p
			priced++
		}

		if q.BidPrice > view.BestBid {
			view.BestBid = q.BidPrice
		}
		if q.AskPrice > 0 && (view.BestAsk == 0 || q.AskPrice < view.BestAsk) {
			view.BestAsk = q.AskPrice
		}
		if q.High24h > view.High24h {
			view.High24h = q.High24h
		}
		if q.Low24h > 0 && (view.Low24h == 0 || q.Low24h < view.Low24h) {
			view.Low24h = q.Low24h
		}
	}

	switch {
	case volume > 0:
		view.VWAPPrice = weighted / volume
	case priced > 0:
		view.VWAPPrice = priceSum / float64(priced)
	}

	if view.BestBid > 0 && view.BestAsk > 0 {
		view.SpreadPercent = (view.BestAsk - view.BestBid) / view.BestBid * 100
	}
	return view
}
