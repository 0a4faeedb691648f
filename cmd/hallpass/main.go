package main

import (
	audithandler "hallpass/internal/audit/handler"
	auditrepository "hallpass/internal/audit/repository"
	auditservice "hallpass/internal/audit/service"
	bookinghandler "hallpass/internal/bookings/handler"
	bookingrepository "hallpass/internal/bookings/repository"
	bookingservice "hallpass/internal/bookings/service"
	bookingvalidator "hallpass/internal/bookings/validator"
	dashboardhandler "hallpass/internal/dashboard/handler"
	dashboardservice "hallpass/internal/dashboard/service"
	roomhandler "hallpass/internal/rooms/handler"
	roomrepository "hallpass/internal/rooms/repository"
	roomservice "hallpass/internal/rooms/service"
	roomvalidator "hallpass/internal/rooms/validator"
	"hallpass/pkg/app"
	"hallpass/pkg/config"
	"hallpass/pkg/contracts"
	"hallpass/pkg/kafka"
	kafka_config "hallpass/pkg/kafka/config"

	"github.com/joho/godotenv"
)

const ServiceName = "hallpass"

func main() {
	// Missing .env is fine in containerized deployments.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Hallpass service")

	producer := initProducer(cfg)
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}()
	}

	handlers := initHandlers(cfg, producer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

// initProducer builds the audit event producer. The writer connects lazily,
// so a broker that is down at startup only surfaces on the first publish.
func initProducer(cfg *config.Config) *kafka.Producer {
	if cfg.AuditTopic == "" {
		cfg.Log.Info("Audit topic not configured, event publishing disabled")
		return nil
	}

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.AuditTopic, cfg.AuditTopic+".dlq")
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Kafka audit producer initialized", "topic", cfg.AuditTopic)
	return producer
}

func initHandlers(cfg *config.Config, producer *kafka.Producer) []contracts.Handler {
	auditRepo := auditrepository.NewMongoAuditLogRepository(cfg)

	// The nil check matters: a typed nil *kafka.Producer stored in the
	// EventPublisher interface would dodge the service's nil guard.
	var publisher auditservice.EventPublisher
	if producer != nil {
		publisher = producer
	}
	auditService := auditservice.NewAuditService(auditRepo, publisher, cfg)

	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)
	roomLockRepo := bookingrepository.NewRoomLockRepository(cfg)
	roomRepo := roomrepository.NewMongoRoomRepository(cfg)

	roomService := roomservice.NewRoomService(
		roomRepo,
		bookingRepo,
		auditService,
		roomvalidator.NewRoomValidator(cfg.Log),
		cfg,
	)

	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		roomLockRepo,
		roomService,
		auditService,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	dashboardService := dashboardservice.NewDashboardService(bookingRepo, roomRepo, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		roomhandler.NewRoomHandler(roomService, cfg.Log),
		audithandler.NewAuditHandler(auditService, cfg.Log),
		dashboardhandler.NewDashboardHandler(dashboardService, cfg.Log),
	}
}
