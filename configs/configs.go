// Package configs provides application configuration loaded from environment variables.
// Venue definitions come from an optional YAML file on top of built-in defaults.
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/navid-fn/bestex/internal/quotecache"
	"github.com/navid-fn/bestex/internal/router"
)

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad().
type AppConfig struct {
	// DBDSN is the ClickHouse connection string.
	DBDSN string

	Redis quotecache.RedisConfig

	// KafkaTicks carries every quote written by the feeds.
	KafkaTicks KafkaConfig

	// Ingester contains settings for the Kafka-to-ClickHouse ingester.
	Ingester IngesterConfig

	Router     router.Config
	Aggregator AggregatorConfig

	// HTTPAddr is where the ops server listens.
	HTTPAddr string

	// FeedsInProcess makes the api binary run the venue feeds itself, which
	// the quote stream endpoint needs.
	FeedsInProcess bool

	Log LogConfig

	// VenuesFile is an optional YAML file replacing the default venues.
	VenuesFile string
}

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	// Broker is the Kafka broker address (e.g., "localhost:9092").
	Broker string

	Topic string

	// GroupID is the consumer group ID for the ingester.
	GroupID string

	// Enabled turns tick publishing on in the feed binary.
	Enabled bool
}

// IngesterConfig holds settings for batch processing.
type IngesterConfig struct {
	// BatchSize is the maximum number of ticks to accumulate before flushing.
	BatchSize int

	// BatchTimeoutSeconds is the maximum seconds to wait before flushing.
	BatchTimeoutSeconds int
}

type AggregatorConfig struct {
	// ReadTimeout bounds each per-venue cache read.
	ReadTimeout time.Duration

	// Pairs are summarised by the market stats endpoint.
	Pairs []string
}

type LogConfig struct {
	Level  string
	Format string
}

// getDatabaseDSN constructs the ClickHouse DSN from environment variables.
func getDatabaseDSN() string {
	dbUser := getEnv("CLICKHOUSE_USER", "default")
	dbPassword := getEnv("CLICKHOUSE_PASSWORD", "")
	dbHost := getEnv("CLICKHOUSE_HOST", "localhost")
	dbPort := getEnv("CLICKHOUSE_TCP_PORT", "9000")
	dbName := getEnv("CLICKHOUSE_DB", "default")

	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%s/%s?dial_timeout=10s&read_timeout=20s",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

func getRedisConfig() quotecache.RedisConfig {
	cfg := quotecache.DefaultRedisConfig()
	cfg.Addr = getEnv("REDIS_ADDR", cfg.Addr)
	cfg.Password = getEnv("REDIS_PASSWORD", cfg.Password)
	cfg.DB = getEnvInt("REDIS_DB", cfg.DB)
	cfg.PoolSize = getEnvInt("REDIS_POOL_SIZE", cfg.PoolSize)
	return cfg
}

func getRouterConfig() router.Config {
	cfg := router.DefaultConfig()
	cfg.Weights = router.Weights{
		Price:       getEnvFloat("ROUTER_WEIGHT_PRICE", cfg.Weights.Price),
		Fee:         getEnvFloat("ROUTER_WEIGHT_FEE", cfg.Weights.Fee),
		Reliability: getEnvFloat("ROUTER_WEIGHT_RELIABILITY", cfg.Weights.Reliability),
	}
	cfg.GatherTimeout = getEnvDuration("ROUTER_GATHER_TIMEOUT", cfg.GatherTimeout)
	cfg.ExecutionTimeout = getEnvDuration("ROUTER_EXECUTION_TIMEOUT", cfg.ExecutionTimeout)
	cfg.SnapshotOnMiss = getEnvBool("ROUTER_SNAPSHOT_ON_MISS", cfg.SnapshotOnMiss)
	return cfg
}

// AppLoad loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func AppLoad() *AppConfig {
	_ = godotenv.Load() // Ignore error - .env is optional

	return &AppConfig{
		DBDSN: getDatabaseDSN(),
		Redis: getRedisConfig(),
		KafkaTicks: KafkaConfig{
			Broker:  getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:   getEnv("KAFKA_TICK_TOPIC", "bestex_quote_ticks"),
			GroupID: getEnv("KAFKA_TICK_GROUP_ID", "bestex-tick-ingester"),
			Enabled: getEnvBool("KAFKA_TICKS_ENABLED", false),
		},
		Ingester: IngesterConfig{
			BatchSize:           getEnvInt("BATCH_SIZE", 500),
			BatchTimeoutSeconds: getEnvInt("BATCH_TIMEOUT_SECONDS", 5),
		},
		Router: getRouterConfig(),
		Aggregator: AggregatorConfig{
			ReadTimeout: getEnvDuration("AGGREGATOR_READ_TIMEOUT", 200*time.Millisecond),
			Pairs:       getEnvList("MARKET_PAIRS", []string{"BTC/USD", "ETH/USD"}),
		},
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		FeedsInProcess: getEnvBool("FEEDS_IN_PROCESS", false),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		VenuesFile: getEnv("VENUES_FILE", ""),
	}
}

// NewLogger builds the process logger. Every component derives its own
// entry from it.
func NewLogger(cfg LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return logger
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration accepts Go durations ("250ms", "5s").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma-separated value.
func getEnvList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
