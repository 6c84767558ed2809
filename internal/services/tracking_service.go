package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/events"
	"github.com/pulse-crm/backend/internal/mailer"
	"github.com/pulse-crm/backend/internal/models"
	"go.uber.org/zap"
)

type TrackingService struct {
	opens     OpenStore
	campaigns CampaignStore
	queue     QueueStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewTrackingService(opens OpenStore, campaigns CampaignStore, queue QueueStore, publisher events.Publisher, log *zap.Logger) *TrackingService {
	return &TrackingService{
		opens:     opens,
		campaigns: campaigns,
		queue:     queue,
		publisher: publisher,
		log:       log,
	}
}

// RecordOpen stores a pixel load. Missing parameters are ignored and errors are only logged,
// the caller always serves the pixel.
func (s *TrackingService) RecordOpen(ctx context.Context, campaignID, encodedEmail, ip, userAgent string) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" || strings.TrimSpace(encodedEmail) == "" {
		return
	}
	email := mailer.DecodeEmail(encodedEmail)
	if email == "" {
		return
	}

	o := &models.Open{
		CampaignID: campaignID,
		Email:      email,
		IP:         ip,
		UserAgent:  userAgent,
	}
	if err := s.opens.Record(ctx, o); err != nil {
		s.log.Warn("failed to record open", zap.String("campaign_id", campaignID), zap.Error(err))
		return
	}

	_ = s.publisher.Publish(ctx, events.ChannelPipeline, events.Event{
		Type: events.EventEmailOpened,
		Payload: map[string]any{
			"campaign_id": campaignID,
			"email":       email,
		},
	})
}

type CampaignStats struct {
	CampaignID uuid.UUID         `json:"campaign_id"`
	Status     string            `json:"status"`
	Queue      models.QueueStats `json:"queue"`
	Opens      models.OpenStats  `json:"opens"`
}

func (s *TrackingService) CampaignStats(ctx context.Context, id uuid.UUID) (*CampaignStats, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "campaign", "")
	}
	q, err := s.queue.Stats(ctx, &id)
	if err != nil {
		return nil, err
	}
	o, err := s.opens.Stats(ctx, id.String())
	if err != nil {
		return nil, err
	}
	return &CampaignStats{CampaignID: id, Status: c.Status, Queue: q, Opens: o}, nil
}
