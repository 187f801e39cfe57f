package cliconfig

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig is the TOML layout. Durations are strings, bounds a list.
type FileConfig struct {
	Bounds       []int  `toml:"bounds"`
	BatchSize    int    `toml:"batch_size"`
	Sink         string `toml:"sink"`
	Output       string `toml:"output"`
	Format       string `toml:"format"`
	Lenient      *bool  `toml:"lenient"`
	MaxLineBytes int    `toml:"max_line_bytes"`

	Follow FollowFileConfig `toml:"follow"`
	HTTP   HTTPFileConfig   `toml:"http"`
	Kafka  KafkaFileConfig  `toml:"kafka"`
	Redis  RedisFileConfig  `toml:"redis"`
	Log    LogFileConfig    `toml:"log"`
}

// FollowFileConfig is the [follow] table.
type FollowFileConfig struct {
	Dir      string `toml:"dir"`
	StateDir string `toml:"state_dir"`
	Debounce string `toml:"debounce"`
}

// HTTPFileConfig is the [http] table.
type HTTPFileConfig struct {
	ServiceURL string `toml:"service_url"`
	AuthKey    string `toml:"auth_key"`
	Timeout    string `toml:"timeout"`
	MaxRetries int    `toml:"max_retries"`
}

// KafkaFileConfig is the [kafka] table.
type KafkaFileConfig struct {
	Brokers  []string `toml:"brokers"`
	Topic    string   `toml:"topic"`
	Username string   `toml:"username"`
	Password string   `toml:"password"`
}

// RedisFileConfig is the [redis] table.
type RedisFileConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// LogFileConfig is the [log] table.
type LogFileConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.seqbatch/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".seqbatch", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("bounds", joinInts(fc.Bounds), &cfg.Bounds)
	s.setInt("batch-size", fc.BatchSize, &cfg.BatchSize)
	s.setString("sink", fc.Sink, &cfg.Sink)
	s.setString("output", fc.Output, &cfg.Output)
	s.setString("format", fc.Format, &cfg.Format)
	s.setBool("lenient", fc.Lenient, &cfg.Lenient)
	s.setInt("max-line-bytes", fc.MaxLineBytes, &cfg.MaxLineBytes)

	s.setString("follow", fc.Follow.Dir, &cfg.Follow)
	s.setString("state-dir", fc.Follow.StateDir, &cfg.StateDir)
	if err := s.setDuration("debounce", fc.Follow.Debounce, &cfg.Debounce); err != nil {
		return err
	}

	s.setString("service-url", fc.HTTP.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.HTTP.AuthKey, &cfg.AuthKey)
	if err := s.setDuration("timeout", fc.HTTP.Timeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	s.setInt("max-retries", fc.HTTP.MaxRetries, &cfg.MaxRetries)

	s.setString("kafka-brokers", strings.Join(fc.Kafka.Brokers, ","), &cfg.KafkaBrokers)
	s.setString("kafka-topic", fc.Kafka.Topic, &cfg.KafkaTopic)
	s.setString("kafka-username", fc.Kafka.Username, &cfg.KafkaUsername)
	s.setString("kafka-password", fc.Kafka.Password, &cfg.KafkaPassword)

	s.setString("redis-addr", fc.Redis.Addr, &cfg.RedisAddr)
	s.setString("redis-password", fc.Redis.Password, &cfg.RedisPassword)
	s.setInt("redis-db", fc.Redis.DB, &cfg.RedisDB)
	s.setString("redis-prefix", fc.Redis.Prefix, &cfg.RedisPrefix)

	s.setString("log-level", fc.Log.Level, &cfg.LogLevel)
	s.setString("log-format", fc.Log.Format, &cfg.LogFormat)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
