package main

import (
	"courtside/internal/availability"
	"courtside/internal/booking/handler"
	"courtside/internal/booking/repository"
	"courtside/internal/booking/service"
	"courtside/internal/booking/validator"
	"courtside/internal/catalog"
	"courtside/internal/events"
	"courtside/internal/pricing"
	"courtside/pkg/app"
	"courtside/pkg/config"
	kafka_config "courtside/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")
	bookingService, publisher := initServices(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.BookingService, events.Publisher) {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	catalogRepo := catalog.NewMongoCatalogRepository(cfg)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	waitlistRepo := repository.NewMongoWaitlistRepository(cfg)
	lockRepo := repository.NewMongoSlotLockRepository(cfg)

	checker := availability.NewChecker(catalogRepo, reservationRepo, cfg, cfg.Log)
	pricingEngine := pricing.NewEngine(catalogRepo, cfg.Log)

	publisher := initPublisher(cfg)

	bookingService := service.NewBookingService(
		reservationRepo,
		waitlistRepo,
		lockRepo,
		checker,
		pricingEngine,
		bookingValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, publisher
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, events will not be published")
		return events.NewNoopPublisher()
	}

	publisher, err := events.NewKafkaPublisher(kafka_config.Load(), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
	}
	return publisher
}
