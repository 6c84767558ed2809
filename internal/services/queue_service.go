package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/events"
	"github.com/pulse-crm/backend/internal/mailer"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/repositories"
	"go.uber.org/zap"
)

// QueueService drains email_queue: claim a batch, render each entry, hand it to the sender.
type QueueService struct {
	queue     QueueStore
	campaigns CampaignStore
	renderer  *mailer.Renderer
	sender    mailer.Sender
	publisher events.Publisher
	batchSize int
	log       *zap.Logger
}

func NewQueueService(
	queue QueueStore,
	campaigns CampaignStore,
	renderer *mailer.Renderer,
	sender mailer.Sender,
	publisher events.Publisher,
	batchSize int,
	log *zap.Logger,
) *QueueService {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &QueueService{
		queue:     queue,
		campaigns: campaigns,
		renderer:  renderer,
		sender:    sender,
		publisher: publisher,
		batchSize: batchSize,
		log:       log,
	}
}

type BatchResult struct {
	Claimed  int `json:"claimed"`
	Sent     int `json:"sent"`
	Failed   int `json:"failed"`
	Requeued int `json:"requeued"`
}

func (s *QueueService) ProcessBatch(ctx context.Context) (*BatchResult, error) {
	entries, err := s.queue.ClaimPending(ctx, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("claim queue entries: %w", err)
	}
	res := &BatchResult{Claimed: len(entries)}
	if len(entries) == 0 {
		return res, nil
	}

	campaigns := make(map[uuid.UUID]*models.Campaign)
	touched := make(map[uuid.UUID]struct{})

	for i, e := range entries {
		if ctx.Err() != nil {
			s.abandon(ctx, entries[i:])
			res.Failed += len(entries) - i
			break
		}
		touched[e.CampaignID] = struct{}{}

		c, err := s.campaign(ctx, e.CampaignID, campaigns)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			// the entry was never attempted; hand it back for the next batch
			res.Requeued++
			s.log.Warn("campaign lookup failed, requeueing entry",
				zap.String("entry_id", e.ID.String()),
				zap.String("campaign_id", e.CampaignID.String()),
				zap.Error(err),
			)
			if rerr := s.queue.Requeue(context.WithoutCancel(ctx), e.ID); rerr != nil {
				s.log.Error("failed to requeue entry", zap.String("entry_id", e.ID.String()), zap.Error(rerr))
			}
			continue
		}
		if err == nil {
			err = s.deliver(ctx, e, c)
		}
		if err != nil {
			res.Failed++
			s.log.Warn("queue entry failed",
				zap.String("entry_id", e.ID.String()),
				zap.String("email", e.Email),
				zap.Error(err),
			)
			if merr := s.queue.MarkFailed(context.WithoutCancel(ctx), e.ID, err.Error()); merr != nil {
				s.log.Error("failed to mark queue entry failed", zap.String("entry_id", e.ID.String()), zap.Error(merr))
			}
			continue
		}

		if err := s.queue.MarkSent(ctx, e.ID); err != nil {
			s.log.Error("failed to mark queue entry sent", zap.String("entry_id", e.ID.String()), zap.Error(err))
		}
		res.Sent++
	}

	for id := range touched {
		done, err := s.campaigns.CompleteIfDrained(context.WithoutCancel(ctx), id)
		if err != nil {
			s.log.Warn("failed to settle campaign status", zap.String("campaign_id", id.String()), zap.Error(err))
			continue
		}
		if done {
			s.log.Info("campaign sent", zap.String("campaign_id", id.String()))
		}
	}

	_ = s.publisher.Publish(ctx, events.ChannelPipeline, events.Event{
		Type: events.EventQueueProcessed,
		Payload: map[string]any{
			"claimed":  res.Claimed,
			"sent":     res.Sent,
			"failed":   res.Failed,
			"requeued": res.Requeued,
		},
	})

	s.log.Info("queue batch processed",
		zap.Int("claimed", res.Claimed),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
		zap.Int("requeued", res.Requeued),
	)
	return res, nil
}

// campaign looks up the entry's campaign once per batch. Only successful lookups and
// missing campaigns are remembered; other errors are retried on the next entry.
func (s *QueueService) campaign(ctx context.Context, id uuid.UUID, cache map[uuid.UUID]*models.Campaign) (*models.Campaign, error) {
	if c, ok := cache[id]; ok {
		if c == nil {
			return nil, fmt.Errorf("campaign %s: %w", id, repositories.ErrNotFound)
		}
		return c, nil
	}
	c, err := s.campaigns.GetByID(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		cache[id] = nil
		return nil, fmt.Errorf("campaign %s: %w", id, err)
	case err != nil:
		return nil, err
	}
	cache[id] = c
	return c, nil
}

func (s *QueueService) deliver(ctx context.Context, e models.QueueEntry, c *models.Campaign) error {
	subject := c.Subject
	if subject == "" {
		subject = c.Title
	}

	msg, err := s.renderer.Render(mailer.Content{
		CampaignID: c.ID,
		Subject:    subject,
		HTML:       c.Content,
	}, e.Email, e.Name)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return s.sender.Send(ctx, msg)
}

// abandon fails entries that were claimed but never attempted so they do not sit in sending.
func (s *QueueService) abandon(ctx context.Context, entries []models.QueueEntry) {
	mctx := context.WithoutCancel(ctx)
	for _, e := range entries {
		if err := s.queue.MarkFailed(mctx, e.ID, "processing interrupted"); err != nil {
			s.log.Error("failed to release queue entry", zap.String("entry_id", e.ID.String()), zap.Error(err))
		}
	}
}

func (s *QueueService) Stats(ctx context.Context, campaignID *uuid.UUID) (models.QueueStats, error) {
	return s.queue.Stats(ctx, campaignID)
}
