package sink

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisPrefix prefixes the per-bucket list keys.
const DefaultRedisPrefix = "seqbatch"

// RedisConfig configures RedisSink.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// listPusher is the part of a redis client the sink uses.
type listPusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Close() error
}

// RedisSink appends every envelope to a list per bucket, so consumers can
// pop batches of a given length class.
type RedisSink struct {
	client listPusher
	codec  Codec
	prefix string
	closed atomic.Bool
}

// NewRedisSink connects to a single redis server.
func NewRedisSink(cfg RedisConfig, codec Codec) (*RedisSink, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: no address configured")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newRedisSink(client, codec, cfg.Prefix), nil
}

func newRedisSink(client listPusher, codec Codec, prefix string) *RedisSink {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisSink{client: client, codec: codec, prefix: prefix}
}

// Key returns the list key for a bucket.
func (s *RedisSink) Key(bucket int) string {
	return fmt.Sprintf("%s:%d", s.prefix, bucket)
}

// Write appends env to its bucket's list.
func (s *RedisSink) Write(ctx context.Context, env Envelope) error {
	if s.closed.Load() {
		return ErrClosed
	}
	data, err := s.codec.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope %d: %w", env.Seq, err)
	}
	if err := s.client.RPush(ctx, s.Key(env.Bucket), data).Err(); err != nil {
		return fmt.Errorf("push envelope %d: %w", env.Seq, err)
	}
	return nil
}

// Close closes the client.
func (s *RedisSink) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.client.Close()
}
