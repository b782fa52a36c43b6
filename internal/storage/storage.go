// Package storage persists quote ticks to ClickHouse.
package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/navid-fn/bestex/internal/storage/models"
)

// Storage defines the interface for persisting tick data.
// Implementations must be safe for concurrent use.
type Storage interface {
	// CreateTicks inserts a batch of ticks into the database.
	CreateTicks(ctx context.Context, ticks []*models.QuoteTick) error

	// Close releases database connection resources.
	Close() error
}

// clickhouseStorage implements Storage using native ClickHouse driver.
// Uses batch inserts for high-throughput data ingestion.
type clickhouseStorage struct {
	conn driver.Conn
}

// NewClickHouseStorage parses the DSN, opens a connection and pings it.
// Returns an error if connection cannot be established within 5 seconds.
func NewClickHouseStorage(dsn string) (Storage, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		return nil, err
	}

	return &clickhouseStorage{conn: conn}, nil
}

// CreateTicks inserts ticks with one batch insert.
// All ticks in the batch share the same inserted_at timestamp.
func (s *clickhouseStorage) CreateTicks(ctx context.Context, ticks []*models.QuoteTick) error {
	if len(ticks) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO quote_tick (
			tick_id, source, symbol,
			bid, ask, last, volume_24h, high_24h, low_24h,
			event_time, inserted_at
		)
	`)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, t := range ticks {
		err := batch.Append(
			t.TickID,
			t.Source,
			t.Symbol,
			t.Bid,
			t.Ask,
			t.Last,
			t.Volume24h,
			t.High24h,
			t.Low24h,
			t.EventTime,
			now,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

func (s *clickhouseStorage) Close() error {
	return s.conn.Close()
}

// TickID derives the deduplication key of a tick.
func TickID(source, symbol string, eventTime time.Time) string {
	hash := sha1.Sum([]byte(fmt.Sprintf("%s-%s-%d", source, symbol, eventTime.UnixNano())))
	return hex.EncodeToString(hash[:])
}
