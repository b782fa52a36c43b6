package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"github.com/navid-fn/bestex/configs"
	"github.com/navid-fn/bestex/internal/ingester"
	"github.com/navid-fn/bestex/internal/metrics"
	"github.com/navid-fn/bestex/internal/storage"
)

func main() {
	appConfig := configs.AppLoad()
	logger := configs.NewLogger(appConfig.Log)

	tickStorage, err := storage.NewClickHouseStorage(appConfig.DBDSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to DB")
	}
	defer tickStorage.Close()

	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{appConfig.KafkaTicks.Broker},
		Topic:          appConfig.KafkaTicks.Topic,
		GroupID:        appConfig.KafkaTicks.GroupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 0,    // commits are explicit, after each insert
	})
	defer kafkaReader.Close()

	svc := ingester.NewIngester(
		kafkaReader,
		tickStorage,
		metrics.New(prometheus.DefaultRegisterer),
		logger,
		ingester.Config{
			BatchSize:    appConfig.Ingester.BatchSize,
			BatchTimeout: time.Duration(appConfig.Ingester.BatchTimeoutSeconds) * time.Second,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Ingester started successfully")

	if err := svc.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Ingester stopped with error")
	}
	logger.Info("Ingester stopped")
}
