package quotecache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultRedisConfig favours short timeouts: a slow cache is treated as an absent cache.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		PoolSize:     50,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  300 * time.Millisecond,
		WriteTimeout: 300 * time.Millisecond,
	}
}

// RedisStore is a fail-open Store backed by Redis.
type RedisStore struct {
	client redis.UniversalClient
	logger *logrus.Entry
}

func NewRedisStore(cfg RedisConfig, logger *logrus.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   1,
	})
	return NewRedisStoreFromClient(client, logger)
}

func NewRedisStoreFromClient(client redis.UniversalClient, logger *logrus.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger.WithField("component", "redis-store"),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WithError(err).WithField("key", key).Warn("Redis GET failed, treating as absent")
		}
		return nil, false
	}
	return val, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Redis SET failed, dropping write")
	}
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.WithError(err).WithField("keys", len(keys)).Warn("Redis DEL failed")
	}
}

// InvalidatePattern walks the keyspace with SCAN so a large cache never blocks Redis.
func (s *RedisStore) InvalidatePattern(ctx context.Context, pattern string) int {
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.WithError(err).WithField("pattern", pattern).Warn("Redis SCAN failed")
		return 0
	}
	if len(keys) == 0 {
		return 0
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.WithError(err).WithField("pattern", pattern).Warn("Redis pattern delete failed")
		return 0
	}
	return len(keys)
}

// Incr reports 1 when Redis is unreachable, matching a fresh counter.
func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) int64 {
	val, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Redis INCR failed")
		return 1
	}
	if val == 1 {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Redis EXPIRE failed")
		}
	}
	return val
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
