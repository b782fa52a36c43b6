package main

import (
	"database/sql"

	_ "github.com/ClickHouse/clickhouse-go/v2" // ClickHouse driver

	"github.com/navid-fn/bestex/configs"
	"github.com/navid-fn/bestex/internal/migrations"
)

func main() {
	cfg := configs.AppLoad()
	logger := configs.NewLogger(cfg.Log)

	db, err := sql.Open("clickhouse", cfg.DBDSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.WithError(err).Fatal("Failed to ping database")
	}

	logger.Info("Running database migrations...")
	if err := migrations.Up(db); err != nil {
		logger.WithError(err).Fatal("Goose migration failed")
	}
	logger.Info("Migrations completed successfully")
}
