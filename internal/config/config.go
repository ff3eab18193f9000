// Package config loads the server's environment-driven settings
// (SPEC_FULL §6), following the same load-once package-level pattern
// the teacher's betting config used, minus its monetization-specific
// fields.
package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting this server reads.
type Config struct {
	RedisURL        string
	HTTPAddr        string
	LogLevel        string
	MaxGamesDefault int
}

var (
	cfg      *Config
	loadOnce sync.Once
)

// Load reads .env (if present) and the environment into the global
// Config, applying the documented defaults for anything unset.
// Subsequent calls return the same instance.
func Load() *Config {
	loadOnce.Do(func() {
		_ = godotenv.Load() // optional; missing .env is not an error

		cfg = &Config{
			RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			MaxGamesDefault: getEnvInt("MAX_GAMES_DEFAULT", 1),
		}
	})
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
