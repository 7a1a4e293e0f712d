package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	MongoURI string
	MongoDB  string
	RedisURI string
	Port     string

	JWTSecret string

	AppEnv   string
	LogLevel string

	// RoomCodeTTL bounds how long a generated room code stays reserved in
	// Redis; abandoned rooms free their codes after this window.
	RoomCodeTTL time.Duration

	// NoMajorityPenalizes is the default tie rule for new rooms; individual
	// rooms may override it in their settings.
	NoMajorityPenalizes bool
}

func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGO_DB", "lurdinha"),
		RedisURI:            getEnv("REDIS_URI", "localhost:6379"),
		Port:                getEnv("PORT", "8080"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RoomCodeTTL:         getEnvDuration("ROOM_CODE_TTL", 24*time.Hour),
		NoMajorityPenalizes: getEnvBool("NO_MAJORITY_PENALIZES", false),
	}

	// Remove redis:// prefix if present
	if len(cfg.RedisURI) > 8 && cfg.RedisURI[:8] == "redis://" {
		cfg.RedisURI = cfg.RedisURI[8:]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AppEnv == "production" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.RoomCodeTTL <= 0 {
		return fmt.Errorf("ROOM_CODE_TTL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
