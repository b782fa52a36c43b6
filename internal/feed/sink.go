package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/navid-fn/bestex/internal/models"
)

// TickSink receives every quote a connector writes to the cache.
type TickSink interface {
	SendQuote(ctx context.Context, q models.Quote) error
}

// KafkaSink publishes quote ticks to Kafka, keyed by cache key so one venue/pair
// always lands on the same partition.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(writer *kafka.Writer) *KafkaSink {
	return &KafkaSink{writer: writer}
}

// NewKafkaWriter builds the async writer the feed binary uses.
func NewKafkaWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Compression:  kafka.Zstd,
	}
}

func (s *KafkaSink) SendQuote(ctx context.Context, q models.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("serialize failed: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = s.writer.WriteMessages(writeCtx, kafka.Message{Key: []byte(q.CacheKey()), Value: data})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("kafka write failed: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
