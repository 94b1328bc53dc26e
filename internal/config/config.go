package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Data source kinds accepted in DATA_SOURCE.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Record source.
	DataSource   string
	DataDir      string
	DataManifest string
	SQLitePath   string

	// Navigable years.
	MinYear     int
	MaxYear     int
	DefaultYear int

	// Animation cadence.
	AnimationInterval time.Duration
	AnimationStep     time.Duration

	// Optional frame publishing.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaFrameTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	minYear, err := parseYear("MIN_YEAR", 2014)
	if err != nil {
		return nil, err
	}
	maxYear, err := parseYear("MAX_YEAR", 2025)
	if err != nil {
		return nil, err
	}
	defaultYear, err := parseYear("DEFAULT_YEAR", 2024)
	if err != nil {
		return nil, err
	}

	interval, err := parsePositiveDuration("ANIMATION_INTERVAL", "100ms")
	if err != nil {
		return nil, err
	}
	step, err := parsePositiveDuration("ANIMATION_STEP", "50ms")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataSource:   sharedcfg.EnvOrDefault("DATA_SOURCE", SourceCSV),
		DataDir:      sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		DataManifest: os.Getenv("DATA_MANIFEST"),
		SQLitePath:   sharedcfg.EnvOrDefault("SQLITE_PATH", "quakes.db"),

		MinYear:     minYear,
		MaxYear:     maxYear,
		DefaultYear: defaultYear,

		AnimationInterval: interval,
		AnimationStep:     step,

		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaFrameTopic: sharedcfg.EnvOrDefault("KAFKA_FRAME_TOPIC", "quake-frames"),
	}

	if cfg.DataSource != SourceCSV && cfg.DataSource != SourceSQLite {
		return nil, fmt.Errorf("invalid DATA_SOURCE %q: want %q or %q", cfg.DataSource, SourceCSV, SourceSQLite)
	}
	if cfg.MinYear > cfg.MaxYear {
		return nil, errors.New("MIN_YEAR must not exceed MAX_YEAR")
	}
	if cfg.DefaultYear < cfg.MinYear || cfg.DefaultYear > cfg.MaxYear {
		return nil, errors.New("DEFAULT_YEAR must lie within MIN_YEAR..MAX_YEAR")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaFrameTopic == "" {
			return nil, errors.New("KAFKA_FRAME_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// Years returns every navigable year in ascending order.
func (c *Config) Years() []int {
	years := make([]int, 0, c.MaxYear-c.MinYear+1)
	for y := c.MinYear; y <= c.MaxYear; y++ {
		years = append(years, y)
	}
	return years
}

func parseYear(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}
