// Command route runs one order through the smart order router against paper
// gateways and prints the execution result. Quotes come from the shared cache
// the feeds write to.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/navid-fn/bestex/configs"
	"github.com/navid-fn/bestex/internal/drivers"
	"github.com/navid-fn/bestex/internal/gateway"
	"github.com/navid-fn/bestex/internal/models"
	"github.com/navid-fn/bestex/internal/quotecache"
	"github.com/navid-fn/bestex/internal/router"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		pair   string
		side   string
		amount float64
		rps    float64
	)
	flag.StringVar(&pair, "pair", "BTC/USD", "Pair to trade, e.g. BTC/USD")
	flag.StringVar(&side, "side", "buy", "buy or sell")
	flag.Float64Var(&amount, "amount", 0, "Amount of the base asset (required)")
	flag.Float64Var(&rps, "rps", 5, "Order rate limit per venue")
	flag.Parse()

	order, err := orderFromFlags(pair, side, amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		return 2
	}

	appConfig := configs.AppLoad()
	logger := configs.NewLogger(appConfig.Log)

	venues, err := configs.LoadVenues(appConfig.VenuesFile)
	if err != nil {
		logger.WithError(err).Error("Failed to load venues")
		return 1
	}

	store := quotecache.NewRedisStore(appConfig.Redis, logger)
	defer store.Close()
	cache := quotecache.New(store, logger)

	gateways := make(map[string]gateway.Gateway, len(venues))
	for _, v := range venues {
		gateways[v.ID] = gateway.NewGuarded(v.ID, gateway.NewPaper(v.ID), gateway.GuardConfig{
			RequestsPerSecond: rps,
			Burst:             1,
			Breaker:           gateway.DefaultBreakerConfig(),
		}, logger)
	}

	snapshotters, err := drivers.Snapshotters(venues)
	if err != nil {
		logger.WithError(err).Error("Failed to build snapshotters")
		return 1
	}

	routerConfig := appConfig.Router
	routerConfig.Venues = configs.RouterVenues(venues)
	sor, err := router.New(routerConfig, cache, gateways, logger, router.WithSnapshotters(snapshotters))
	if err != nil {
		logger.WithError(err).Error("Invalid router configuration")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := sor.FindBestExecution(ctx, order)
	if err != nil {
		logger.WithError(err).Error("Routing failed")
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.WithError(err).Error("Failed to print result")
		return 1
	}
	return 0
}

// orderFromFlags builds a market order and rejects it before any venue is
// contacted when the flags do not describe a valid order.
func orderFromFlags(pair, side string, amount float64) (models.OrderIntent, error) {
	orderSide, err := models.ParseSide(side)
	if err != nil {
		return models.OrderIntent{}, err
	}
	order := models.OrderIntent{
		Pair:      models.NormalizePair(pair),
		Side:      orderSide,
		Amount:    amount,
		OrderType: models.OrderTypeMarket,
	}
	if err := order.Validate(); err != nil {
		return models.OrderIntent{}, err
	}
	return order, nil
}
