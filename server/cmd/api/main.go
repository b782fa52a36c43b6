package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"

	"github.com/navid-fn/bestex/configs"
	"github.com/navid-fn/bestex/internal/aggregator"
	"github.com/navid-fn/bestex/internal/drivers"
	"github.com/navid-fn/bestex/internal/feed"
	"github.com/navid-fn/bestex/internal/metrics"
	"github.com/navid-fn/bestex/internal/migrations"
	"github.com/navid-fn/bestex/internal/quotecache"
	"github.com/navid-fn/bestex/server/internal/handler"
	"github.com/navid-fn/bestex/server/internal/repository"
	"github.com/navid-fn/bestex/server/internal/router"
	"github.com/navid-fn/bestex/server/internal/service"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before serving")
	flag.Parse()

	cfg := configs.AppLoad()
	logger := configs.NewLogger(cfg.Log)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	venues, err := configs.LoadVenues(cfg.VenuesFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load venues")
	}

	db, err := gorm.Open(clickhouse.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	if *migrateFlag {
		sqlDB, err := db.DB()
		if err != nil {
			logger.WithError(err).Fatal("Failed to get sql.DB")
		}
		logger.Info("Running database migrations...")
		if err := migrations.Up(sqlDB); err != nil {
			logger.WithError(err).Fatal("Goose migration failed")
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	store := quotecache.NewRedisStore(cfg.Redis, logger)
	defer store.Close()
	cache := quotecache.New(store, logger)

	venueIDs := configs.VenueIDs(venues)
	agg, err := aggregator.New(cache, venueIDs, cfg.Aggregator.ReadTimeout, logger)
	if err != nil {
		logger.WithError(err).Fatal("Invalid aggregator configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	routerConfig := &router.Config{
		MarketHandler: handler.NewMarketHandler(service.NewMarketService(agg, cache, venueIDs, cfg.Aggregator.Pairs)),
		TickHandler:   handler.NewTickHandler(service.NewTicksService(repository.NewGormTickRepository(db))),
		Gatherer:      prometheus.DefaultGatherer,
	}

	feedsDone := make(chan struct{})
	if cfg.FeedsInProcess {
		hub := feed.NewHub(m)
		connectors, err := drivers.Connectors(venues, cache, logger, feed.WithHub(hub), feed.WithMetrics(m))
		if err != nil {
			logger.WithError(err).Fatal("Failed to build connectors")
		}
		manager := feed.NewManager(connectors, cache, logger)
		routerConfig.OpsHandler = handler.NewOpsHandler(manager, cache)
		routerConfig.StreamHandler = handler.NewStreamHandler(hub, logger)

		go func() {
			defer close(feedsDone)
			if err := manager.Run(ctx); err != nil {
				logger.WithError(err).Error("Some feeds went fatal")
			}
		}()
	} else {
		routerConfig.OpsHandler = handler.NewOpsHandler(nil, cache)
		close(feedsDone)
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router.NewRouter(routerConfig),
	}
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("API server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("API server shutdown")
	}
	<-feedsDone
	logger.Info("API server stopped")
}
