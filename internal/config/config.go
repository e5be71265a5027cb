// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cpether/mobile-yahtzee/internal/cache"
	"github.com/cpether/mobile-yahtzee/internal/room"
)

// Config collects every tunable the server reads from the environment.
// Defaults match local development.
type Config struct {
	Addr string

	// RollDelay is the pause between the rolling-started and rolled
	// broadcasts.
	RollDelay time.Duration

	// SweepInterval and RetentionWindow drive the room reaper.
	SweepInterval   time.Duration
	RetentionWindow time.Duration

	// RedisAddr empty disables the action journal.
	RedisAddr  string
	RedisDB    int
	RedisQueue string

	// RejoinTokenTTL bounds how long a dropped player can come back. Zero
	// means tokens never expire.
	RejoinTokenTTL time.Duration

	// DatabaseURL is read only by the historian. DATABASE_URL wins; otherwise
	// it is assembled from the individual POSTGRES_*/PG_* variables.
	DatabaseURL string

	LogLevel string
}

// Load reads the environment. godotenv/autoload in the entrypoints pulls in a
// local .env first.
func Load() Config {
	cfg := Config{
		Addr:            ":" + getEnv("PORT", "8080"),
		RollDelay:       time.Duration(getEnvInt("ROLL_DELAY_MS", 2000)) * time.Millisecond,
		SweepInterval:   time.Duration(getEnvInt("SWEEP_INTERVAL_MIN", 30)) * time.Minute,
		RetentionWindow: time.Duration(getEnvInt("ROOM_RETENTION_HOURS", 24)) * time.Hour,
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisQueue:      getEnv("JOURNAL_QUEUE_NAME", cache.DefaultQueueName),
		RejoinTokenTTL:  time.Duration(getEnvInt("REJOIN_TOKEN_TTL_MIN", 0)) * time.Minute,
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			getEnv("POSTGRES_USER", "postgres"),
			getEnv("POSTGRES_PASSWORD", "postgres"),
			getEnv("PG_HOST", "localhost"),
			getEnv("PG_PORT", "5432"),
			getEnv("PG_DATABASE", "yahtzee"),
		)
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = room.SweepInterval
	}
	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = room.RetentionWindow
	}
	return cfg
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer from an environment variable or returns a
// default on absence or parse failure.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
