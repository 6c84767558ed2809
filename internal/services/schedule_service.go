package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/events"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/repositories"
	"go.uber.org/zap"
)

const sweepLeaseName = "due-sweep"

// wall-clock layouts accepted in addition to RFC 3339; they are read in the schedule zone.
var scheduleLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

type ScheduleOptions struct {
	Location  *time.Location
	BatchSize int
	LeaseTTL  time.Duration
}

type ScheduleService struct {
	schedules ScheduleStore
	campaigns CampaignStore
	resolver  *RecipientResolver
	locker    Locker
	publisher events.Publisher
	audit     AuditLogger
	opts      ScheduleOptions
	log       *zap.Logger

	now func() time.Time
}

func NewScheduleService(
	schedules ScheduleStore,
	campaigns CampaignStore,
	resolver *RecipientResolver,
	locker Locker,
	publisher events.Publisher,
	audit AuditLogger,
	opts ScheduleOptions,
	log *zap.Logger,
) *ScheduleService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 5 * time.Minute
	}
	return &ScheduleService{
		schedules: schedules,
		campaigns: campaigns,
		resolver:  resolver,
		locker:    locker,
		publisher: publisher,
		audit:     audit,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

// ParseScheduleTime accepts RFC 3339, or a wall-clock time interpreted in loc.
func ParseScheduleTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

type ScheduleInput struct {
	CampaignID     uuid.UUID
	ScheduledAt    string
	RecipientType  string
	RecipientEmail string
	RecipientGroup string
}

func (s *ScheduleService) buildSchedule(in ScheduleInput, sch *models.Schedule) error {
	if strings.TrimSpace(in.ScheduledAt) == "" {
		return invalid("scheduled_at", "scheduled_at is required")
	}
	at, err := ParseScheduleTime(in.ScheduledAt, s.opts.Location)
	if err != nil {
		return invalid("scheduled_at", "scheduled_at must be RFC 3339 or YYYY-MM-DDTHH:MM[:SS]")
	}
	if !models.IsValidRecipientType(in.RecipientType) {
		return invalid("recipient_type", "recipient_type must be one of all, group, individual")
	}

	sch.ScheduledAt = at.UTC()
	sch.RecipientType = in.RecipientType
	sch.RecipientEmail = nil
	sch.RecipientGroup = nil

	switch in.RecipientType {
	case models.RecipientIndividual:
		email, err := normalizeEmail("recipient_email", in.RecipientEmail)
		if err != nil {
			return err
		}
		sch.RecipientEmail = &email
	case models.RecipientGroup:
		group, err := required("recipient_group", in.RecipientGroup)
		if err != nil {
			return err
		}
		sch.RecipientGroup = &group
	}
	return nil
}

func (s *ScheduleService) Create(ctx context.Context, actorID uuid.UUID, in ScheduleInput) (*models.Schedule, error) {
	if in.CampaignID == uuid.Nil {
		return nil, invalid("campaign_id", "campaign_id is required")
	}
	sch := &models.Schedule{CampaignID: in.CampaignID, Status: models.ScheduleStatusScheduled}
	if err := s.buildSchedule(in, sch); err != nil {
		return nil, err
	}

	campaign, err := s.campaigns.GetByID(ctx, in.CampaignID)
	if err != nil {
		return nil, storeErr(err, "campaign", "")
	}

	if err := s.schedules.Create(ctx, sch); err != nil {
		return nil, err
	}

	if campaign.Status == models.CampaignStatusDraft {
		if err := s.campaigns.UpdateStatus(ctx, campaign.ID, models.CampaignStatusScheduled); err != nil {
			s.log.Warn("failed to mark campaign scheduled", zap.String("campaign_id", campaign.ID.String()), zap.Error(err))
		}
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "schedule_created",
		EntityType:  "schedule",
		EntityID:    &sch.ID,
		Meta: map[string]any{
			"campaign_id":    sch.CampaignID.String(),
			"recipient_type": sch.RecipientType,
			"scheduled_at":   sch.ScheduledAt,
		},
	})
	return sch, nil
}

func (s *ScheduleService) GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduleWithCampaign, error) {
	sch, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "schedule", "")
	}
	return sch, nil
}

func (s *ScheduleService) List(ctx context.Context, f repositories.ScheduleFilter) ([]models.ScheduleWithCampaign, error) {
	return s.schedules.List(ctx, f)
}

// Update edits time and audience of a schedule that has not fired yet.
// Empty input fields keep their current values.
func (s *ScheduleService) Update(ctx context.Context, id uuid.UUID, in ScheduleInput) (*models.Schedule, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != models.ScheduleStatusScheduled {
		return nil, conflict("schedule already " + cur.Status)
	}

	if in.ScheduledAt == "" {
		in.ScheduledAt = cur.ScheduledAt.Format(time.RFC3339)
	}
	if in.RecipientType == "" {
		in.RecipientType = cur.RecipientType
	}
	if in.RecipientEmail == "" && cur.RecipientEmail != nil {
		in.RecipientEmail = *cur.RecipientEmail
	}
	if in.RecipientGroup == "" && cur.RecipientGroup != nil {
		in.RecipientGroup = *cur.RecipientGroup
	}

	sch := cur.Schedule
	if err := s.buildSchedule(in, &sch); err != nil {
		return nil, err
	}

	ok, err := s.schedules.UpdatePending(ctx, &sch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflict("schedule is no longer pending")
	}
	return &sch, nil
}

func (s *ScheduleService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.schedules.Delete(ctx, id); err != nil {
		return storeErr(err, "schedule", "")
	}
	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "schedule_deleted",
		EntityType:  "schedule",
		EntityID:    &id,
	})
	return nil
}

type SweepResult struct {
	Due      int   `json:"due"`
	Fired    int   `json:"fired"`
	Failed   int   `json:"failed"`
	Skipped  int   `json:"skipped"`
	Enqueued int64 `json:"enqueued"`
	Busy     bool  `json:"busy,omitempty"` // another sweep held the lease
}

// ProcessDue fires every due schedule. Each schedule is claimed before its audience
// is resolved, so concurrent sweeps never enqueue the same schedule twice; a failure
// marks that schedule failed and the sweep moves on.
func (s *ScheduleService) ProcessDue(ctx context.Context) (*SweepResult, error) {
	res := &SweepResult{}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, sweepLeaseName, s.opts.LeaseTTL)
		switch {
		case err != nil:
			s.log.Warn("sweep lease unavailable, relying on row claims", zap.Error(err))
		case release == nil:
			res.Busy = true
			return res, nil
		default:
			defer release()
		}
	}

	due, err := s.schedules.ListDue(ctx, s.now(), s.opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("list due schedules: %w", err)
	}
	res.Due = len(due)

	for i := range due {
		if ctx.Err() != nil {
			break
		}
		sch := &due[i]

		won, err := s.schedules.Claim(ctx, sch.ID)
		if err != nil {
			s.log.Error("failed to claim schedule", zap.String("schedule_id", sch.ID.String()), zap.Error(err))
			res.Skipped++
			continue
		}
		if !won {
			res.Skipped++
			continue
		}

		n, err := s.fire(ctx, sch)
		if err != nil {
			res.Failed++
			s.fail(ctx, sch, err)
			continue
		}
		res.Fired++
		res.Enqueued += n
	}

	if res.Due > 0 {
		s.log.Info("due sweep finished",
			zap.Int("due", res.Due),
			zap.Int("fired", res.Fired),
			zap.Int("failed", res.Failed),
			zap.Int("skipped", res.Skipped),
			zap.Int64("enqueued", res.Enqueued),
		)
	}
	return res, nil
}

func (s *ScheduleService) fire(ctx context.Context, sch *models.ScheduleWithCampaign) (int64, error) {
	recipients, err := s.resolver.Resolve(ctx, &sch.Schedule)
	if err != nil {
		return 0, fmt.Errorf("resolve recipients: %w", err)
	}

	n, err := s.schedules.Fire(ctx, &sch.Schedule, recipients)
	if err != nil {
		return 0, err
	}
	sch.Status = models.ScheduleStatusSent

	// nothing was enqueued, so no queue batch will ever settle this campaign
	if n == 0 {
		if _, err := s.campaigns.CompleteIfDrained(context.WithoutCancel(ctx), sch.CampaignID); err != nil {
			s.log.Warn("failed to settle campaign with empty audience",
				zap.String("campaign_id", sch.CampaignID.String()), zap.Error(err))
		}
	}

	_ = s.publisher.Publish(ctx, events.ChannelPipeline, events.Event{
		Type: events.EventScheduleFired,
		Payload: map[string]any{
			"schedule_id":    sch.ID.String(),
			"campaign_id":    sch.CampaignID.String(),
			"campaign_title": sch.CampaignTitle,
			"enqueued":       n,
		},
	})
	_ = s.audit.Log(ctx, models.AuditLog{
		ActorType:  models.ActorSystem,
		Action:     "schedule_fired",
		EntityType: "schedule",
		EntityID:   &sch.ID,
		Meta:       map[string]any{"enqueued": n},
	})

	s.log.Info("schedule fired",
		zap.String("schedule_id", sch.ID.String()),
		zap.String("campaign_id", sch.CampaignID.String()),
		zap.Int64("enqueued", n),
	)
	return n, nil
}

func (s *ScheduleService) fail(ctx context.Context, sch *models.ScheduleWithCampaign, cause error) {
	s.log.Error("schedule failed", zap.String("schedule_id", sch.ID.String()), zap.Error(cause))

	// the mark must land even if the sweep's context is being torn down
	mctx := context.WithoutCancel(ctx)
	if err := s.schedules.MarkFailed(mctx, sch.ID, cause.Error()); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		s.log.Error("failed to mark schedule failed", zap.String("schedule_id", sch.ID.String()), zap.Error(err))
	}
	sch.Status = models.ScheduleStatusFailed

	_ = s.publisher.Publish(mctx, events.ChannelPipeline, events.Event{
		Type: events.EventScheduleFailed,
		Payload: map[string]any{
			"schedule_id": sch.ID.String(),
			"campaign_id": sch.CampaignID.String(),
			"error":       cause.Error(),
		},
	})
	_ = s.audit.Log(mctx, models.AuditLog{
		ActorType:  models.ActorSystem,
		Action:     "schedule_failed",
		EntityType: "schedule",
		EntityID:   &sch.ID,
		Meta:       map[string]any{"error": cause.Error()},
	})
}
