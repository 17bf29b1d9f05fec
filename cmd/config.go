package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the service configuration read from the environment.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	LogLevel   slog.Level

	KafkaBrokers           []string
	KafkaNotificationTopic string

	RedisURL       string
	IdempotencyTTL time.Duration

	OutboxRetrySchedule string
	OutboxBatchSize     int
	OutboxMaxAttempts   int
	OutboxListen        bool
}

// DSN is the Postgres connection string used by gorm and the outbox listener.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads the configuration from the environment, loading a .env
// file first when one exists. Variables already set in the environment win.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var errList []error
	config := Config{
		HTTPPort:               envOr("HTTP_PORT", "8080"),
		DBHost:                 os.Getenv("DB_HOST"),
		DBPort:                 envOr("DB_PORT", "5432"),
		DBUser:                 os.Getenv("DB_USER"),
		DBPassword:             os.Getenv("DB_PASSWORD"),
		DBName:                 os.Getenv("DB_NAME"),
		DBSslMode:              envOr("DB_SSLMODE", "disable"),
		KafkaBrokers:           splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaNotificationTopic: envOr("KAFKA_NOTIFICATION_TOPIC", "delivery.status-changed"),
		RedisURL:               os.Getenv("REDIS_URL"),
		OutboxRetrySchedule:    envOr("OUTBOX_RETRY_SCHEDULE", "*/10 * * * * *"),
	}

	var err error
	if config.LogLevel, err = parseLevel(envOr("LOG_LEVEL", "info")); err != nil {
		errList = append(errList, err)
	}
	if config.IdempotencyTTL, err = time.ParseDuration(envOr("IDEMPOTENCY_TTL", "24h")); err != nil {
		errList = append(errList, fmt.Errorf("IDEMPOTENCY_TTL: %w", err))
	}
	if config.OutboxBatchSize, err = strconv.Atoi(envOr("OUTBOX_BATCH_SIZE", "50")); err != nil {
		errList = append(errList, fmt.Errorf("OUTBOX_BATCH_SIZE: %w", err))
	}
	if config.OutboxMaxAttempts, err = strconv.Atoi(envOr("OUTBOX_MAX_ATTEMPTS", "8")); err != nil {
		errList = append(errList, fmt.Errorf("OUTBOX_MAX_ATTEMPTS: %w", err))
	}
	if config.OutboxListen, err = strconv.ParseBool(envOr("OUTBOX_LISTEN", "true")); err != nil {
		errList = append(errList, fmt.Errorf("OUTBOX_LISTEN: %w", err))
	}

	for key, value := range map[string]string{
		"DB_HOST": config.DBHost,
		"DB_USER": config.DBUser,
		"DB_NAME": config.DBName,
	} {
		if value == "" {
			errList = append(errList, fmt.Errorf("%s is required", key))
		}
	}

	if err := errors.Join(errList...); err != nil {
		return Config{}, err
	}
	return config, nil
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
