package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Bounds:    []int{4, 8, 16},
				BatchSize: 64,
				Sink:      "redis",
				Lenient:   &trueVal,
				Follow:    FollowFileConfig{Dir: "/spool", Debounce: "1s"},
				HTTP:      HTTPFileConfig{Timeout: "30s"},
				Kafka:     KafkaFileConfig{Brokers: []string{"a:9092", "b:9092"}, Topic: "batches"},
				Redis:     RedisFileConfig{Addr: "localhost:6379", DB: 3},
				Log:       LogFileConfig{Level: "debug"},
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Bounds:       "4,8,16",
				BatchSize:    64,
				Sink:         "redis",
				Lenient:      true,
				Follow:       "/spool",
				Debounce:     time.Second,
				HTTPTimeout:  30 * time.Second,
				KafkaBrokers: "a:9092,b:9092",
				KafkaTopic:   "batches",
				RedisAddr:    "localhost:6379",
				RedisDB:      3,
				LogLevel:     "debug",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Bounds:    []int{1, 2},
				BatchSize: 8,
			},
			changed: map[string]bool{"bounds": true},
			initial: Config{
				Bounds:    "5,10",
				BatchSize: 32,
			},
			expected: Config{
				Bounds:    "5,10", // unchanged because flag was set
				BatchSize: 8,
			},
		},
		{
			name: "empty file keeps initial values",
			initial: Config{
				Bounds:    "5,10",
				BatchSize: 32,
				Sink:      "stdout",
			},
			expected: Config{
				Bounds:    "5,10",
				BatchSize: 32,
				Sink:      "stdout",
			},
		},
		{
			name: "returns error for invalid duration",
			fileConfig: FileConfig{
				HTTP: HTTPFileConfig{Timeout: "soon"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyFileConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyFileConfig() unexpected error: %v", err)
				return
			}

			if !tt.wantErr {
				if cfg.Bounds != tt.expected.Bounds {
					t.Errorf("Bounds = %v, want %v", cfg.Bounds, tt.expected.Bounds)
				}
				if cfg.BatchSize != tt.expected.BatchSize {
					t.Errorf("BatchSize = %v, want %v", cfg.BatchSize, tt.expected.BatchSize)
				}
				if cfg.Sink != tt.expected.Sink {
					t.Errorf("Sink = %v, want %v", cfg.Sink, tt.expected.Sink)
				}
				if cfg.Lenient != tt.expected.Lenient {
					t.Errorf("Lenient = %v, want %v", cfg.Lenient, tt.expected.Lenient)
				}
				if cfg.Follow != tt.expected.Follow {
					t.Errorf("Follow = %v, want %v", cfg.Follow, tt.expected.Follow)
				}

				// Check duration fields
				if cfg.Debounce != tt.expected.Debounce {
					t.Errorf("Debounce = %v, want %v", cfg.Debounce, tt.expected.Debounce)
				}
				if cfg.HTTPTimeout != tt.expected.HTTPTimeout {
					t.Errorf("HTTPTimeout = %v, want %v", cfg.HTTPTimeout, tt.expected.HTTPTimeout)
				}

				if cfg.KafkaBrokers != tt.expected.KafkaBrokers {
					t.Errorf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, tt.expected.KafkaBrokers)
				}
				if cfg.RedisAddr != tt.expected.RedisAddr {
					t.Errorf("RedisAddr = %v, want %v", cfg.RedisAddr, tt.expected.RedisAddr)
				}
				if cfg.RedisDB != tt.expected.RedisDB {
					t.Errorf("RedisDB = %v, want %v", cfg.RedisDB, tt.expected.RedisDB)
				}
				if cfg.LogLevel != tt.expected.LogLevel {
					t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, tt.expected.LogLevel)
				}
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
bounds = [5, 10, 20]
batch_size = 16
sink = "kafka"
lenient = true

[follow]
dir = "/spool"
debounce = "500ms"

[kafka]
brokers = ["localhost:9092"]
topic = "batches"

[log]
format = "json"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if len(fc.Bounds) != 3 || fc.Bounds[2] != 20 {
		t.Errorf("Bounds = %v, want [5 10 20]", fc.Bounds)
	}
	if fc.BatchSize != 16 {
		t.Errorf("BatchSize = %v, want 16", fc.BatchSize)
	}
	if fc.Sink != "kafka" {
		t.Errorf("Sink = %v, want kafka", fc.Sink)
	}
	if fc.Lenient == nil || *fc.Lenient != true {
		t.Errorf("Lenient = %v, want true", fc.Lenient)
	}
	if fc.Follow.Dir != "/spool" || fc.Follow.Debounce != "500ms" {
		t.Errorf("Follow = %+v", fc.Follow)
	}
	if len(fc.Kafka.Brokers) != 1 || fc.Kafka.Topic != "batches" {
		t.Errorf("Kafka = %+v", fc.Kafka)
	}
	if fc.Log.Format != "json" {
		t.Errorf("Log.Format = %v, want json", fc.Log.Format)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
sink = "stdout"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".seqbatch") {
		t.Errorf("DefaultConfigPath() = %v, should contain .seqbatch", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
