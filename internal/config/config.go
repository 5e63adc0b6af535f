// Package config loads the small amount of configuration the invalidation
// engine's external collaborators need: where to reach the remote store and
// which database index its keyspace notifications are scoped to. Connection
// pooling, retries, and TLS are the remote-store client's concern, not
// this package's.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the Redis connection and database-index settings this
// module's collaborators (internal/pubsub, cmd/l1cached) need.
type Config struct {
	Redis RedisConfig
	// DBIndex selects which database's keyspace-notification channel
	// family the listener subscribes to.
	DBIndex int
}

// RedisConfig holds connection settings for the remote store.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Timeout  time.Duration
}

// Load reads configuration from STACKREDIS_L1_* environment variables,
// falling back to sensible local defaults for anything unset.
func Load() *Config {
	return &Config{
		Redis: RedisConfig{
			Host:     getEnv("STACKREDIS_L1_REDIS_HOST", "localhost"),
			Port:     getEnv("STACKREDIS_L1_REDIS_PORT", "6379"),
			Password: getEnv("STACKREDIS_L1_REDIS_PASSWORD", ""),
			DB:       getIntEnv("STACKREDIS_L1_REDIS_DB", 0),
			Timeout:  getDurationEnv("STACKREDIS_L1_REDIS_TIMEOUT", 5*time.Second),
		},
		DBIndex: getIntEnv("STACKREDIS_L1_DB_INDEX", 0),
	}
}

// Addr returns the host:port pair suitable for redis.Options.Addr.
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
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

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
