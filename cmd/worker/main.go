package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulse-crm/backend/internal/config"
	"github.com/pulse-crm/backend/internal/db"
	"github.com/pulse-crm/backend/internal/events"
	"github.com/pulse-crm/backend/internal/mailer"
	"github.com/pulse-crm/backend/internal/repositories"
	"github.com/pulse-crm/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	// SIGINT/SIGTERM cancel ctx directly so an in-flight sweep or drain stops at its next check.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	contactRepo := repositories.NewContactRepo(pool)
	campaignRepo := repositories.NewCampaignRepo(pool)
	scheduleRepo := repositories.NewScheduleRepo(pool)
	queueRepo := repositories.NewQueueRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Services
	publisher := events.NewRedisPublisher(rdb, log)
	scheduleService := services.NewScheduleService(
		scheduleRepo, campaignRepo, services.NewRecipientResolver(contactRepo),
		db.NewRedisLocker(rdb), publisher, auditRepo,
		services.ScheduleOptions{
			Location:  cfg.ScheduleLocation(),
			BatchSize: cfg.SweepBatchSize,
			LeaseTTL:  cfg.SweepLeaseTTL,
		}, log,
	)
	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	}, log)
	queueService := services.NewQueueService(
		queueRepo, campaignRepo, mailer.NewRenderer(mailer.Links{BaseURL: cfg.PublicBaseURL}),
		sender, publisher, cfg.QueueBatchSize, log,
	)

	log.Info("worker started",
		zap.Duration("sweep_interval", cfg.SweepInterval),
		zap.Duration("queue_interval", cfg.QueueInterval),
		zap.String("schedule_zone", cfg.ScheduleLocation().String()),
	)

	// Run jobs on tickers
	sweepTicker := time.NewTicker(cfg.SweepInterval)
	queueTicker := time.NewTicker(cfg.QueueInterval)
	defer sweepTicker.Stop()
	defer queueTicker.Stop()

	runLoop(ctx, sweepTicker.C, queueTicker.C,
		func(ctx context.Context) { runSweep(ctx, scheduleService, log) },
		func(ctx context.Context) { runQueue(ctx, queueService, log) },
	)
	log.Info("worker stopped")
}

// runLoop dispatches ticks until ctx is done. Jobs run inline, so a tick that arrives
// while a job is running is coalesced by the ticker.
func runLoop(ctx context.Context, sweepC, queueC <-chan time.Time, sweep, drain func(context.Context)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sweepC:
			sweep(ctx)
		case <-queueC:
			drain(ctx)
		}
	}
}

func runSweep(ctx context.Context, svc *services.ScheduleService, log *zap.Logger) {
	res, err := svc.ProcessDue(ctx)
	if err != nil {
		log.Error("due sweep failed", zap.Error(err))
		return
	}
	if res.Busy {
		log.Debug("due sweep skipped, lease held elsewhere")
	}
}

type batchProcessor interface {
	ProcessBatch(ctx context.Context) (*services.BatchResult, error)
}

// runQueue keeps draining while batches send so a large send is not paced by the ticker.
func runQueue(ctx context.Context, svc batchProcessor, log *zap.Logger) {
	for ctx.Err() == nil {
		res, err := svc.ProcessBatch(ctx)
		if err != nil {
			log.Error("queue batch failed", zap.Error(err))
			return
		}
		if res.Claimed == 0 || res.Sent == 0 {
			return
		}
	}
}
