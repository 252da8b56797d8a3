// Package config defines service configuration and its layered loader.
package config

import (
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFile enables a rotating file sink next to stdout when set.
	LogFile string `koanf:"log_file"`
	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseURL is a Postgres DSN. Empty selects the in-memory store.
	DatabaseURL string `koanf:"database_url"`
	// MigrateOnStart applies pending migrations before serving.
	MigrateOnStart bool `koanf:"migrate_on_start"`

	// RedisAddr enables the leaderboard cache when set.
	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`
	// LeaderboardCacheTTLSec bounds how stale a cached board may be.
	LeaderboardCacheTTLSec int `koanf:"leaderboard_cache_ttl_sec"`

	// KafkaBrokers is a comma separated broker list. Empty selects the log sink.
	KafkaBrokers string `koanf:"kafka_brokers"`
	KafkaTopic   string `koanf:"kafka_topic"`

	// EventQueueSize bounds the in-memory domain event queue.
	EventQueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of event publisher workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize bounds the idempotency key guard.
	DedupeSize int `koanf:"dedupe_size"`

	// JWTSecret and JWTIssuer verify bearer tokens (HS256).
	JWTSecret string `koanf:"jwt_secret"`
	JWTIssuer string `koanf:"jwt_issuer"`

	GeminiAPIKey string `koanf:"gemini_api_key"`
	GeminiModel  string `koanf:"gemini_model"`
	// CoachDryRun answers coach requests locally without calling the model.
	CoachDryRun     bool `koanf:"coach_dry_run"`
	CoachRPS        int  `koanf:"coach_rps"`
	CoachBurst      int  `koanf:"coach_burst"`
	CoachTimeoutSec int  `koanf:"coach_timeout_sec"`

	// MaxWorkoutsLimit caps GET /api/workouts?limit.
	MaxWorkoutsLimit int `koanf:"max_workouts_limit"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		LeaderboardCacheTTLSec: 30,
		KafkaTopic:             "fitquest.workouts",
		EventQueueSize:         10_000,
		WorkerCount:            runtime.NumCPU(),
		DedupeSize:             100_000,
		JWTIssuer:              "fitquest",
		GeminiModel:            "gemini-1.5-flash",
		CoachRPS:               2,
		CoachBurst:             4,
		CoachTimeoutSec:        30,
		MaxWorkoutsLimit:       100,
	}
}

// Brokers splits KafkaBrokers into a clean list.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// LeaderboardCacheTTL returns the cache TTL as a duration.
func (c *Config) LeaderboardCacheTTL() time.Duration {
	return time.Duration(c.LeaderboardCacheTTLSec) * time.Second
}

// CoachTimeout returns the coach request timeout as a duration.
func (c *Config) CoachTimeout() time.Duration {
	return time.Duration(c.CoachTimeoutSec) * time.Second
}
