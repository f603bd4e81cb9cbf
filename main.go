package main

import (
	"context"
	"log"

	"drone-delivery/cmd"
	"drone-delivery/internal/data/repository"
	"drone-delivery/internal/messaging"
	"drone-delivery/internal/realtime"
	"drone-delivery/internal/usecase"
	"drone-delivery/internal/wire"
	"drone-delivery/pkg/database"
	"drone-delivery/pkg/oauth"
	"drone-delivery/pkg/utils"

	"go.uber.org/zap"
)

// eventBus is the publisher main owns and closes on shutdown
type eventBus interface {
	usecase.EventPublisher
	Close() error
}

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	// Connect to redis
	rdb, err := database.InitRedis(ctx, config.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Event bus, optional
	var events eventBus = messaging.NewNoopPublisher(logger)
	if len(config.Kafka.Brokers) > 0 {
		producer, err := messaging.NewKafkaProducer(config.Kafka, logger)
		if err != nil {
			logger.Fatal("Failed to connect to kafka", zap.Error(err))
		}
		events = messaging.NewKafkaPublisher(producer, config.Kafka, logger)
	}
	defer func() {
		if err := events.Close(); err != nil {
			logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	}()

	hub := realtime.NewHub(config.App.CORSOrigin, logger)
	defer hub.Close()

	// Initialize all repositories
	repos := repository.NewRepository(db, rdb, logger)

	// Wire all dependencies
	app := wire.Wiring(ctx, wire.Deps{
		Repo:     repos,
		Events:   events,
		Hub:      hub,
		Provider: oauth.NewGoogle(config.OAuth),
	}, config, logger)

	if err := app.Service.Auth.EnsureAdmin(ctx); err != nil {
		logger.Fatal("Failed to seed admin", zap.Error(err))
	}

	// Telemetry over MQTT, optional
	if config.MQTT.Broker != "" {
		subscriber := messaging.NewTelemetrySubscriber(config.MQTT, app.Service.Tracking, logger)
		if err := subscriber.Start(); err != nil {
			logger.Fatal("Failed to connect to mqtt", zap.Error(err))
		}
		defer subscriber.Stop()
	}

	// Start server, blocks until a shutdown signal
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}

	logger.Info("Server stopped")
}
