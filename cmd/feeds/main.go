package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/navid-fn/bestex/configs"
	"github.com/navid-fn/bestex/internal/drivers"
	"github.com/navid-fn/bestex/internal/feed"
	"github.com/navid-fn/bestex/internal/metrics"
	"github.com/navid-fn/bestex/internal/quotecache"
)

func main() {
	appConfig := configs.AppLoad()
	logger := configs.NewLogger(appConfig.Log)

	venues, err := configs.LoadVenues(appConfig.VenuesFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load venues")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	store := quotecache.NewRedisStore(appConfig.Redis, logger)
	defer store.Close()
	cache := quotecache.New(store, logger)

	opts := []feed.Option{feed.WithMetrics(m), feed.WithHub(feed.NewHub(m))}
	if appConfig.KafkaTicks.Enabled {
		tickWriter := feed.NewKafkaWriter(appConfig.KafkaTicks.Broker, appConfig.KafkaTicks.Topic)
		defer tickWriter.Close()
		opts = append(opts, feed.WithSink(feed.NewKafkaSink(tickWriter)))
		logger.WithField("topic", appConfig.KafkaTicks.Topic).Info("Publishing quote ticks to Kafka")
	}

	connectors, err := drivers.Connectors(venues, cache, logger, opts...)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build connectors")
	}
	manager := feed.NewManager(connectors, cache, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: appConfig.HTTPAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Metrics server stopped")
		}
	}()

	logger.WithField("venues", configs.VenueIDs(venues)).Info("Feeds started")

	if err := manager.Run(ctx); err != nil {
		logger.WithError(err).Error("Some feeds went fatal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	logger.Info("Feeds stopped")
}
