package main

import (
	"context"
	"encoding/json"
	"fmt"

	"reservo/internal/reservations/handler"
	"reservo/internal/reservations/repository"
	"reservo/internal/reservations/service"
	"reservo/internal/reservations/validator"
	"reservo/pkg/app"
	"reservo/pkg/config"
	"reservo/pkg/events"
	events_config "reservo/pkg/events/config"
)

func main() {
	cfg := config.Load("reservations")
	cfg.Log.Info("Starting Reservations service")

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	application := app.NewApplication(cfg)

	var eventsCfg *events_config.Config
	if cfg.EventsEnabled {
		var err error
		if eventsCfg, err = events_config.Load(); err != nil {
			cfg.Log.Fatal("Failed to load events configuration", "error", err)
		}
	}

	publisher := initPublisher(cfg, eventsCfg, application)
	bookingService, conflictService, catalogService, bridgeService := initServices(cfg, publisher)
	initMaintenanceConsumer(cfg, eventsCfg, application, conflictService)

	application.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		handler.NewResourceHandler(catalogService, cfg.Log),
		handler.NewConflictHandler(conflictService, cfg.Log),
		handler.NewBridgeHandler(bridgeService, cfg.Log),
	)
	application.Run()
}

func initServices(cfg *config.Config, publisher service.EventPublisher) (
	service.ReservationService,
	service.ConflictService,
	service.CatalogService,
	service.BridgeService,
) {
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	resourceRepo := repository.NewMongoResourceRepository(cfg)
	conflictRepo := repository.NewMongoConflictRepository(cfg)
	lockRepo := repository.NewMongoSlotLockRepository(cfg)

	bookingValidator := validator.NewBookingValidator(cfg.Log)

	bookingService := service.NewReservationService(
		bookingRepo,
		resourceRepo,
		lockRepo,
		bookingValidator,
		publisher,
		cfg,
	)
	conflictService := service.NewConflictService(conflictRepo, bookingRepo, publisher, cfg)
	catalogService := service.NewCatalogService(resourceRepo, bookingRepo, cfg)
	bridgeService := service.NewBridgeService(bookingService, bookingRepo, cfg)

	cfg.Log.Info("Reservation services initialized")
	return bookingService, conflictService, catalogService, bridgeService
}

// initPublisher returns nil when events are disabled; services treat a nil
// publisher as a no-op sink.
func initPublisher(cfg *config.Config, eventsCfg *events_config.Config, application *app.Application) service.EventPublisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Event publishing disabled")
		return nil
	}

	producer, err := events.NewProducer(eventsCfg, cfg.EventsTopic, cfg.EventsTopic+".dlq")
	if err != nil {
		cfg.Log.Fatal("Failed to create event producer", "error", err)
	}

	application.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close event producer", "error", err)
		}
	})

	cfg.Log.Info("Event producer initialized", "topic", cfg.EventsTopic)
	return producer
}

// initMaintenanceConsumer subscribes to maintenance hold announcements from the
// facilities side and records a conflict for every booking the hold collides
// with.
func initMaintenanceConsumer(cfg *config.Config, eventsCfg *events_config.Config, application *app.Application, conflicts service.ConflictService) {
	if !cfg.EventsEnabled {
		return
	}

	handleHold := func(ctx context.Context, msg events.Message) error {
		var hold service.MaintenanceHold
		if err := json.Unmarshal(msg.Value, &hold); err != nil {
			return fmt.Errorf("failed to decode maintenance hold: %w", err)
		}

		if _, err := conflicts.RecordMaintenanceHold(ctx, &hold); err != nil {
			return err
		}
		return nil
	}

	consumer, err := events.NewConsumer(
		eventsCfg,
		cfg.MaintenanceTopic,
		cfg.MaintenanceGroup,
		cfg.MaintenanceTopic+".dlq",
		handleHold,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create maintenance consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)

	application.OnShutdown(func() {
		cancel()
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close maintenance consumer", "error", err)
		}
	})

	cfg.Log.Info("Maintenance hold consumer started",
		"topic", cfg.MaintenanceTopic,
		"group", cfg.MaintenanceGroup,
	)
}
