package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/cmd"
	httpin "marketplace/internal/adapters/in/http"
	"marketplace/internal/adapters/out/notification"
	"marketplace/internal/adapters/out/postgres"
	"marketplace/internal/adapters/out/redis"
	"marketplace/internal/core/ports"

	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: configs.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err := postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	sink, closeSink := notificationSink(configs, logger)
	defer closeSink()

	app, err := cmd.NewCompositionRoot(configs, gormDB, sink, logger)
	if err != nil {
		log.Fatalf("Error building application: %v", err)
	}

	jobManager, err := app.CreateJobManager()
	if err != nil {
		log.Fatalf("Error creating jobs: %v", err)
	}
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, &app, configs, idempotencyStore(ctx, configs, logger), logger)
}

func notificationSink(configs cmd.Config, logger *slog.Logger) (ports.NotificationSink, func()) {
	if len(configs.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, notifications are only logged")
		return notification.NewLogSink(logger), func() {}
	}

	sink, err := notification.NewKafkaSink(configs.KafkaBrokers, configs.KafkaNotificationTopic)
	if err != nil {
		log.Fatalf("Error creating Kafka sink: %v", err)
	}
	return sink, func() {
		if err := sink.Close(); err != nil {
			logger.Warn("close kafka sink", "error", err)
		}
	}
}

// idempotencyStore connects to Redis when configured. Without it the API
// runs without Idempotency-Key replays.
func idempotencyStore(ctx context.Context, configs cmd.Config, logger *slog.Logger) ports.IdempotencyStore {
	if configs.RedisURL == "" {
		logger.Warn("REDIS_URL not set, Idempotency-Key replays are disabled")
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := redis.Connect(connectCtx, configs.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, Idempotency-Key replays are disabled", "error", err)
		return nil
	}
	return redis.NewIdempotencyStore(client)
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, configs cmd.Config, store ports.IdempotencyStore, logger *slog.Logger) {
	server, err := app.CreateHTTPServer()
	if err != nil {
		log.Fatalf("Error creating HTTP server: %v", err)
	}

	e, err := httpin.NewRouter(server, httpin.RouterOptions{
		Logger:         logger,
		Metrics:        app.Metrics(),
		MetricsHandler: app.Metrics().Handler(),
		Idempotency:    store,
		IdempotencyTTL: configs.IdempotencyTTL,
	})
	if err != nil {
		log.Fatalf("Error creating router: %v", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "port", configs.HTTPPort)
	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}
