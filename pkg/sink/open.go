package sink

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/bft-labs/seqbatch/pkg/log"
)

// Sink kinds accepted by Open.
const (
	KindStdout = "stdout"
	KindFile   = "file"
	KindHTTP   = "http"
	KindKafka  = "kafka"
	KindRedis  = "redis"
	KindBolt   = "bolt"
)

// Kinds lists every sink kind Open understands.
var Kinds = []string{KindStdout, KindFile, KindHTTP, KindKafka, KindRedis, KindBolt}

// Config selects and configures a sink.
type Config struct {
	Kind   string
	Format string

	// Output is the file path for KindFile and the database path for KindBolt.
	Output string

	HTTP        HTTPConfig
	HTTPTimeout time.Duration
	Kafka       KafkaConfig
	Redis       RedisConfig

	// Stdout overrides os.Stdout for KindStdout.
	Stdout io.Writer
}

// Open builds the sink described by cfg.
func Open(cfg Config, logger log.Logger) (Sink, error) {
	codec, err := CodecByName(cfg.Format)
	if err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case "", KindStdout:
		out := cfg.Stdout
		if out == nil {
			out = os.Stdout
		}
		return NewWriterSink(out, codec, false), nil

	case KindFile:
		if cfg.Output == "" {
			return nil, fmt.Errorf("file sink: output path is required")
		}
		f, err := os.Create(cfg.Output)
		if err != nil {
			return nil, fmt.Errorf("file sink: %w", err)
		}
		return NewWriterSink(f, codec, true), nil

	case KindHTTP:
		if cfg.HTTP.ServiceURL == "" {
			return nil, fmt.Errorf("http sink: service url is required")
		}
		client := &http.Client{Timeout: cfg.HTTPTimeout}
		return NewHTTPSink(client, codec, cfg.HTTP, logger), nil

	case KindKafka:
		s, err := NewKafkaSink(cfg.Kafka, codec, logger)
		if err != nil {
			return nil, err
		}
		return s, nil

	case KindRedis:
		s, err := NewRedisSink(cfg.Redis, codec)
		if err != nil {
			return nil, err
		}
		return s, nil

	case KindBolt:
		if cfg.Output == "" {
			return nil, fmt.Errorf("bolt sink: output path is required")
		}
		s, err := NewBoltSink(cfg.Output, codec)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown sink %q: want one of %v", cfg.Kind, Kinds)
	}
}
