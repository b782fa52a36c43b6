// Package ingester consumes quote ticks from Kafka and persists them to ClickHouse.
// It handles batching, retry logic, and graceful shutdown.
package ingester

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/navid-fn/bestex/internal/metrics"
	"github.com/navid-fn/bestex/internal/models"
	"github.com/navid-fn/bestex/internal/storage"
	dbmodels "github.com/navid-fn/bestex/internal/storage/models"
)

// Config holds ingester configuration parameters.
type Config struct {
	// BatchSize is the maximum number of ticks to accumulate before flushing to DB.
	BatchSize int

	// BatchTimeout is the maximum time to wait before flushing, even if batch isn't full.
	BatchTimeout time.Duration

	// RetryDelay is the pause between failed inserts. Zero means 2s.
	RetryDelay time.Duration
}

// MessageReader is the part of *kafka.Reader the ingester uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// TickStorage is where batches go.
type TickStorage interface {
	CreateTicks(ctx context.Context, ticks []*dbmodels.QuoteTick) error
}

// Ingester consumes ticks from Kafka and writes them to ClickHouse in batches.
// It implements at-least-once delivery: offsets are only committed to Kafka
// after successful database insertion.
type Ingester struct {
	reader  MessageReader
	storage TickStorage
	metrics *metrics.Metrics
	logger  *logrus.Entry
	cfg     Config
}

func NewIngester(reader MessageReader, storage TickStorage, m *metrics.Metrics, logger *logrus.Logger, cfg Config) *Ingester {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 5 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &Ingester{
		reader:  reader,
		storage: storage,
		metrics: m,
		logger:  logger.WithField("component", "ingester"),
		cfg:     cfg,
	}
}

// Start runs the main ingestion loop. It blocks until context is cancelled.
// On shutdown, it flushes whatever is still buffered.
//
// The loop:
//  1. Fetches messages from Kafka
//  2. Decodes JSON quotes into tick rows
//  3. Accumulates ticks until batch is full or timeout
//  4. Inserts batch to ClickHouse (with retry on failure)
//  5. Commits Kafka offsets only after successful DB insert
func (ig *Ingester) Start(ctx context.Context) error {
	ig.logger.WithField("batch_size", ig.cfg.BatchSize).Info("Starting ingester loop")

	batchTicks := make([]*dbmodels.QuoteTick, 0, ig.cfg.BatchSize)
	batchMsgs := make([]kafka.Message, 0, ig.cfg.BatchSize)

	ticker := time.NewTicker(ig.cfg.BatchTimeout)
	defer ticker.Stop()

	flush := func(ctx context.Context) error {
		if len(batchMsgs) == 0 {
			return nil
		}

		// never drop data, keep retrying until DB accepts it
		for len(batchTicks) > 0 {
			err := ig.storage.CreateTicks(ctx, batchTicks)
			if err == nil {
				ig.metrics.IngestedTicks.Add(float64(len(batchTicks)))
				break
			}
			ig.logger.WithError(err).WithField("count", len(batchTicks)).Error("DB insert failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(ig.cfg.RetryDelay):
			}
		}

		if err := ig.reader.CommitMessages(ctx, batchMsgs...); err != nil {
			ig.logger.WithError(err).Warn("Failed to commit offsets")
		}

		batchTicks = batchTicks[:0]
		batchMsgs = batchMsgs[:0]
		ticker.Reset(ig.cfg.BatchTimeout)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return flush(context.WithoutCancel(ctx))

		case <-ticker.C:
			if err := flush(ctx); err != nil {
				return err
			}

		default:
			fetchCtx, cancel := context.WithTimeout(ctx, ig.cfg.BatchTimeout)
			m, err := ig.reader.FetchMessage(fetchCtx)
			cancel()

			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					continue
				}
				ig.logger.WithError(err).Error("Kafka fetch error")
				select {
				case <-ctx.Done():
				case <-time.After(time.Second):
				}
				continue
			}

			// undecodable messages are still committed so they are not refetched
			batchMsgs = append(batchMsgs, m)
			tick, err := Transform(m.Value)
			if err != nil {
				ig.logger.WithError(err).Debug("Skipping tick")
			} else {
				batchTicks = append(batchTicks, tick)
			}

			if len(batchMsgs) >= ig.cfg.BatchSize {
				if err := flush(ctx); err != nil {
					return err
				}
			}
		}
	}
}

// Transform decodes one Kafka value into a tick row and rejects corrupt data.
func Transform(value []byte) (*dbmodels.QuoteTick, error) {
	var q models.Quote
	if err := json.Unmarshal(value, &q); err != nil {
		return nil, fmt.Errorf("decode tick: %w", err)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	for _, v := range []float64{q.BidPrice, q.AskPrice, q.LastPrice, q.Volume24h, q.High24h, q.Low24h} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("corrupted numeric data in %s tick", q.VenueID)
		}
	}

	return &dbmodels.QuoteTick{
		TickID:    storage.TickID(q.VenueID, q.Pair, q.ObservedAt),
		Source:    q.VenueID,
		Symbol:    q.Pair,
		Bid:       q.BidPrice,
		Ask:       q.AskPrice,
		Last:      q.LastPrice,
		Volume24h: q.Volume24h,
		High24h:   q.High24h,
		Low24h:    q.Low24h,
		EventTime: q.ObservedAt.UTC(),
	}, nil
}
