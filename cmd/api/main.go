package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/pulse-crm/backend/internal/config"
	"github.com/pulse-crm/backend/internal/db"
	"github.com/pulse-crm/backend/internal/events"
	apphttp "github.com/pulse-crm/backend/internal/http"
	"github.com/pulse-crm/backend/internal/http/handlers"
	"github.com/pulse-crm/backend/internal/mailer"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/repositories"
	"github.com/pulse-crm/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	contactRepo := repositories.NewContactRepo(pool)
	groupRepo := repositories.NewGroupRepo(pool)
	campaignRepo := repositories.NewCampaignRepo(pool)
	templateRepo := repositories.NewTemplateRepo(pool)
	scheduleRepo := repositories.NewScheduleRepo(pool)
	queueRepo := repositories.NewQueueRepo(pool)
	openRepo := repositories.NewOpenRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Mail
	renderer := mailer.NewRenderer(mailer.Links{BaseURL: cfg.PublicBaseURL})
	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	}, log)

	// Services
	authService := services.NewAuthService(userRepo, auditRepo, cfg, log)
	contactService := services.NewContactService(contactRepo, log)
	groupService := services.NewGroupService(groupRepo, log)
	campaignService := services.NewCampaignService(campaignRepo, auditRepo, log)
	templateService := services.NewTemplateService(templateRepo, log)
	scheduleService := services.NewScheduleService(
		scheduleRepo, campaignRepo, services.NewRecipientResolver(contactRepo),
		db.NewRedisLocker(rdb), publisher, auditRepo,
		services.ScheduleOptions{
			Location:  cfg.ScheduleLocation(),
			BatchSize: cfg.SweepBatchSize,
			LeaseTTL:  cfg.SweepLeaseTTL,
		}, log,
	)
	queueService := services.NewQueueService(queueRepo, campaignRepo, renderer, sender, publisher, cfg.QueueBatchSize, log)
	trackingService := services.NewTrackingService(openRepo, campaignRepo, queueRepo, publisher, log)
	preferenceService := services.NewPreferenceService(contactRepo, log)

	// Handlers
	wsHub := handlers.NewWSHub(cfg, subscriber, log)
	h := apphttp.Handlers{
		Auth:        handlers.NewAuthHandler(authService, log),
		Users:       handlers.NewUserHandler(authService, log),
		Contacts:    handlers.NewContactHandler(contactService, log),
		Groups:      handlers.NewGroupHandler(groupService, log),
		Campaigns:   handlers.NewCampaignHandler("", campaignService, trackingService, auditRepo, log),
		Newsletters: handlers.NewCampaignHandler(models.CampaignTypeNewsletter, campaignService, trackingService, auditRepo, log),
		Templates:   handlers.NewTemplateHandler(templateService, log),
		Schedules:   handlers.NewScheduleHandler(scheduleService, log),
		Pipeline:    handlers.NewPipelineHandler(scheduleService, queueService, log),
		Tracking:    handlers.NewTrackingHandler(trackingService),
		Preferences: handlers.NewPreferenceHandler(preferenceService, log),
		WS:          wsHub,
	}

	// Start WS hub
	if err := wsHub.Start(ctx); err != nil {
		log.Warn("live feed unavailable", zap.Error(err))
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			msg := "internal server error"
			if code != fiber.StatusInternalServerError {
				msg = err.Error()
			} else {
				log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{"error": msg})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, h)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
