package cliconfig

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/seqbatch/pkg/bucket"
	"github.com/bft-labs/seqbatch/pkg/sink"
)

// DefaultBounds are the bucket limits used when none are configured.
const DefaultBounds = "5,10,15,20,25,30,40,50,70,100"

// Config holds CLI configuration for seqbatch.
type Config struct {
	Bounds    string
	BatchSize int

	Sink   string
	Output string
	Format string

	ServiceURL  string
	AuthKey     string
	HTTPTimeout time.Duration
	MaxRetries  int

	KafkaBrokers  string
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	Lenient      bool
	MaxLineBytes int

	Follow   string
	StateDir string
	Debounce time.Duration

	LogLevel  string
	LogFormat string

	// ParsedBounds is derived from Bounds by Validate.
	ParsedBounds bucket.Bounds `json:"-"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Bounds:       DefaultBounds,
		BatchSize:    bucket.DefaultBatchSize,
		Sink:         sink.KindStdout,
		Format:       "json",
		HTTPTimeout:  15 * time.Second,
		MaxRetries:   5,
		RedisPrefix:  sink.DefaultRedisPrefix,
		MaxLineBytes: 4 << 20, // 4MB
		Debounce:     250 * time.Millisecond,
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

// ValidateBatching checks the bounds and batch size and sets ParsedBounds.
func (c *Config) ValidateBatching() error {
	b, err := bucket.ParseBounds(c.Bounds)
	if err != nil {
		return fmt.Errorf("bounds: %w", err)
	}
	c.ParsedBounds = b

	if c.BatchSize < 1 {
		return fmt.Errorf("batch-size must be positive, got %d", c.BatchSize)
	}
	return nil
}

// Validate checks the configuration for errors and sets derived values.
func (c *Config) Validate() error {
	if err := c.ValidateBatching(); err != nil {
		return err
	}

	if c.Sink == "" {
		c.Sink = sink.KindStdout
	}
	if !slices.Contains(sink.Kinds, c.Sink) {
		return fmt.Errorf("sink %q: want one of %s", c.Sink, strings.Join(sink.Kinds, ", "))
	}
	if _, err := sink.CodecByName(c.Format); err != nil {
		return err
	}

	// Ensure no trailing slash
	c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")

	switch c.Sink {
	case sink.KindFile, sink.KindBolt:
		if c.Output == "" {
			return fmt.Errorf("output is required for the %s sink", c.Sink)
		}
	case sink.KindHTTP:
		if c.ServiceURL == "" {
			return fmt.Errorf("service-url is required for the http sink")
		}
	case sink.KindKafka:
		if len(c.Brokers()) == 0 || c.KafkaTopic == "" {
			return fmt.Errorf("kafka-brokers and kafka-topic are required for the kafka sink")
		}
	case sink.KindRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis-addr is required for the redis sink")
		}
	}

	if c.Follow != "" && c.StateDir == "" {
		c.StateDir = c.Follow
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive")
	}

	return nil
}

// Brokers splits KafkaBrokers on commas, dropping blanks.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// SinkConfig converts the CLI configuration into a sink.Config.
func (c *Config) SinkConfig() sink.Config {
	return sink.Config{
		Kind:   c.Sink,
		Format: c.Format,
		Output: c.Output,
		HTTP: sink.HTTPConfig{
			ServiceURL: c.ServiceURL,
			AuthKey:    c.AuthKey,
			MaxRetries: c.MaxRetries,
		},
		HTTPTimeout: c.HTTPTimeout,
		Kafka: sink.KafkaConfig{
			Brokers:  c.Brokers(),
			Topic:    c.KafkaTopic,
			Username: c.KafkaUsername,
			Password: c.KafkaPassword,
		},
		Redis: sink.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		},
	}
}

// Masked returns a copy safe to log.
func (c Config) Masked() Config {
	for _, s := range []*string{&c.AuthKey, &c.KafkaPassword, &c.RedisPassword} {
		if *s != "" {
			*s = "*****"
		}
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
