package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (SEQBATCH_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("bounds", os.Getenv("SEQBATCH_BOUNDS"), &cfg.Bounds)
	if err := s.setIntFromString("batch-size", os.Getenv("SEQBATCH_BATCH_SIZE"), &cfg.BatchSize); err != nil {
		return err
	}
	s.setString("sink", os.Getenv("SEQBATCH_SINK"), &cfg.Sink)
	s.setString("output", os.Getenv("SEQBATCH_OUTPUT"), &cfg.Output)
	s.setString("format", os.Getenv("SEQBATCH_FORMAT"), &cfg.Format)
	s.setBoolFromString("lenient", os.Getenv("SEQBATCH_LENIENT"), &cfg.Lenient)
	if err := s.setIntFromString("max-line-bytes", os.Getenv("SEQBATCH_MAX_LINE_BYTES"), &cfg.MaxLineBytes); err != nil {
		return err
	}

	s.setString("follow", os.Getenv("SEQBATCH_FOLLOW"), &cfg.Follow)
	s.setString("state-dir", os.Getenv("SEQBATCH_STATE_DIR"), &cfg.StateDir)
	if err := s.setDuration("debounce", os.Getenv("SEQBATCH_DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	s.setString("service-url", os.Getenv("SEQBATCH_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("SEQBATCH_AUTH_KEY"), &cfg.AuthKey)
	if err := s.setDuration("timeout", os.Getenv("SEQBATCH_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("max-retries", os.Getenv("SEQBATCH_MAX_RETRIES"), &cfg.MaxRetries); err != nil {
		return err
	}

	s.setString("kafka-brokers", os.Getenv("SEQBATCH_KAFKA_BROKERS"), &cfg.KafkaBrokers)
	s.setString("kafka-topic", os.Getenv("SEQBATCH_KAFKA_TOPIC"), &cfg.KafkaTopic)
	s.setString("kafka-username", os.Getenv("SEQBATCH_KAFKA_USERNAME"), &cfg.KafkaUsername)
	s.setString("kafka-password", os.Getenv("SEQBATCH_KAFKA_PASSWORD"), &cfg.KafkaPassword)

	s.setString("redis-addr", os.Getenv("SEQBATCH_REDIS_ADDR"), &cfg.RedisAddr)
	s.setString("redis-password", os.Getenv("SEQBATCH_REDIS_PASSWORD"), &cfg.RedisPassword)
	if err := s.setIntFromString("redis-db", os.Getenv("SEQBATCH_REDIS_DB"), &cfg.RedisDB); err != nil {
		return err
	}
	s.setString("redis-prefix", os.Getenv("SEQBATCH_REDIS_PREFIX"), &cfg.RedisPrefix)

	s.setString("log-level", os.Getenv("SEQBATCH_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("SEQBATCH_LOG_FORMAT"), &cfg.LogFormat)

	return nil
}
