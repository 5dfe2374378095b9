package main

import (
	bookinghandler "gamehall/internal/bookings/handler"
	bookingrepo "gamehall/internal/bookings/repository"
	bookingservice "gamehall/internal/bookings/service"
	bookingvalidator "gamehall/internal/bookings/validator"
	consolehandler "gamehall/internal/consoles/handler"
	consolerepo "gamehall/internal/consoles/repository"
	consoleservice "gamehall/internal/consoles/service"
	healthhandler "gamehall/internal/health/handler"
	userhandler "gamehall/internal/users/handler"
	userrepo "gamehall/internal/users/repository"
	userservice "gamehall/internal/users/service"
	uservalidator "gamehall/internal/users/validator"
	"gamehall/pkg/app"
	"gamehall/pkg/config"
	"gamehall/pkg/kafka"
	kafkaconfig "gamehall/pkg/kafka/config"
)

const ServiceName = "gamehall"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()
	cfg.SetMongo()

	cfg.Log.Info("Starting gamehall service")

	producer := initProducer(cfg)
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Warn("Failed to close Kafka producer", "error", err)
			}
		}()
	}

	consoleService, userService, bookingService := initServices(cfg, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		healthhandler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		consolehandler.NewConsoleHandler(consoleService, cfg.Log),
		userhandler.NewUserHandler(userService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
	)
	serverApp.Run()
}

// initProducer builds the booking event producer, or nil when eventing is
// switched off.
func initProducer(cfg *config.Config) *kafka.Producer {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka eventing disabled")
		return nil
	}

	kafkaCfg := kafkaconfig.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.BookingEventTopic)
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) (consoleservice.ConsoleService, userservice.UserService, bookingservice.BookingService) {
	consoleRepo := consolerepo.NewMongoConsoleRepository(cfg)
	consoleService := consoleservice.NewConsoleService(consoleRepo, cfg)

	userRepo := userrepo.NewMongoUserRepository(cfg)
	userService := userservice.NewUserService(userRepo, uservalidator.NewUserValidator(cfg.Log), cfg)

	// The booking service takes the user repository directly: the playtime
	// credit runs inside the reservation transaction with a session context.
	var publisher bookingservice.EventPublisher
	if producer != nil {
		publisher = producer
	}
	bookingService := bookingservice.NewBookingService(
		bookingrepo.NewMongoBookingRepository(cfg),
		bookingrepo.NewConsoleLockRepository(cfg),
		bookingvalidator.NewBookingValidator(cfg.Log),
		consoleService,
		userRepo,
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return consoleService, userService, bookingService
}
