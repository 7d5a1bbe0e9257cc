package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	DBPath           string
	Port             string
	Timezone         string
	DefaultUserID    string
	DefaultProfileID string
	ReminderInterval time.Duration
	RebuildDebounce  time.Duration
}

func Load(log *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using system env")
	}

	return &Config{
		DBPath:           getEnv("DB_PATH", "data/dosetrack.db"),
		Port:             getEnv("PORT", "8080"),
		Timezone:         getEnv("TZ", "UTC"),
		DefaultUserID:    getEnv("DEFAULT_USER_ID", "local-user"),
		DefaultProfileID: getEnv("DEFAULT_PROFILE_ID", "self"),
		ReminderInterval: getDuration("REMINDER_INTERVAL", 30*time.Minute, log),
		RebuildDebounce:  getDuration("REBUILD_DEBOUNCE", 150*time.Millisecond, log),
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, log *zap.Logger) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn("invalid duration in env, using default",
			zap.String("key", key),
			zap.String("value", raw))
		return fallback
	}
	return parsed
}
