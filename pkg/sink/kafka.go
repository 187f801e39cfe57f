package sink

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/bft-labs/seqbatch/pkg/log"
)

// KafkaConfig configures KafkaSink.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
}

// messageWriter is the part of *kafka.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes one message per envelope, keyed by bucket so that a
// bucket's batches stay on one partition and keep their order.
type KafkaSink struct {
	writer messageWriter
	codec  Codec
	closed atomic.Bool
}

// NewKafkaSink creates a synchronous writer that waits for all in-sync replicas.
func NewKafkaSink(cfg KafkaConfig, codec Codec, logger log.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: no topic configured")
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Logger: kafka.LoggerFunc(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(format, args...), log.String("component", "kafka"))
		}),
		ErrorLogger: kafka.LoggerFunc(func(format string, args ...interface{}) {
			logger.Error(fmt.Sprintf(format, args...), log.String("component", "kafka"))
		}),
	}

	if cfg.Username != "" && cfg.Password != "" {
		mechanism, err := scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("kafka: sasl: %w", err)
		}
		w.Transport = &kafka.Transport{SASL: mechanism}
	}

	return newKafkaSink(w, codec), nil
}

func newKafkaSink(w messageWriter, codec Codec) *KafkaSink {
	return &KafkaSink{writer: w, codec: codec}
}

// Write publishes env.
func (s *KafkaSink) Write(ctx context.Context, env Envelope) error {
	if s.closed.Load() {
		return ErrClosed
	}
	value, err := s.codec.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope %d: %w", env.Seq, err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(env.Bucket)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "batch-id", Value: []byte(env.ID)},
			{Key: "content-type", Value: []byte(s.codec.ContentType())},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish envelope %d: %w", env.Seq, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (s *KafkaSink) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.writer.Close()
}
