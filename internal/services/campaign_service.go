package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/repositories"
	"go.uber.org/zap"
)

type CampaignService struct {
	campaigns CampaignStore
	audit     AuditLogger
	log       *zap.Logger
}

func NewCampaignService(campaigns CampaignStore, audit AuditLogger, log *zap.Logger) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		audit:     audit,
		log:       log,
	}
}

func (s *CampaignService) validate(c *models.Campaign) error {
	title, err := required("title", c.Title)
	if err != nil {
		return err
	}
	c.Title = title
	if c.Type == "" {
		c.Type = models.CampaignTypeCampaign
	}
	if c.Status == "" {
		c.Status = models.CampaignStatusDraft
	}
	if !models.IsValidCampaignStatus(c.Status) {
		return invalid("status", "status must be one of draft, scheduled, sending, sent, archived")
	}
	return nil
}

func (s *CampaignService) Create(ctx context.Context, actorID uuid.UUID, c *models.Campaign) error {
	if err := s.validate(c); err != nil {
		return err
	}
	if actorID != uuid.Nil {
		c.CreatedBy = &actorID
	}

	if err := s.campaigns.Create(ctx, c); err != nil {
		return err
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      c.Type + "_created",
		EntityType:  "campaign",
		EntityID:    &c.ID,
	})

	return nil
}

// GetByID returns the campaign; when kind is non-empty the campaign must be of that type.
func (s *CampaignService) GetByID(ctx context.Context, id uuid.UUID, kind string) (*models.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, kindName(kind), "")
	}
	if kind != "" && c.Type != kind {
		return nil, notFound(kindName(kind))
	}
	return c, nil
}

func (s *CampaignService) List(ctx context.Context, f repositories.CampaignFilter) ([]models.Campaign, error) {
	if f.Status != nil && !models.IsValidCampaignStatus(*f.Status) {
		return nil, invalid("status", "unknown status filter")
	}
	return s.campaigns.List(ctx, f)
}

type CampaignPatch struct {
	Title        *string
	Date         *time.Time
	Status       *string
	TargetGroups []string
	Subject      *string
	Content      *string
	Design       models.RawJSON
}

// Update applies the patch. There is no version check: the last writer wins.
func (s *CampaignService) Update(ctx context.Context, actorID, id uuid.UUID, kind string, p CampaignPatch) (*models.Campaign, error) {
	c, err := s.GetByID(ctx, id, kind)
	if err != nil {
		return nil, err
	}

	applyString(&c.Title, p.Title)
	applyString(&c.Status, p.Status)
	applyString(&c.Subject, p.Subject)
	applyString(&c.Content, p.Content)
	if p.Date != nil {
		c.Date = p.Date
	}
	if p.TargetGroups != nil {
		c.TargetGroups = models.JoinGroups(p.TargetGroups)
	}
	if p.Design != nil {
		c.Design = p.Design
	}

	if err := s.validate(c); err != nil {
		return nil, err
	}
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, storeErr(err, kindName(kind), "")
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      c.Type + "_updated",
		EntityType:  "campaign",
		EntityID:    &c.ID,
	})
	return c, nil
}

// Duplicate copies content and audience into a new draft.
func (s *CampaignService) Duplicate(ctx context.Context, actorID, id uuid.UUID, kind string) (*models.Campaign, error) {
	src, err := s.GetByID(ctx, id, kind)
	if err != nil {
		return nil, err
	}

	dup := &models.Campaign{
		Title:        src.Title + " (Copy)",
		Date:         src.Date,
		Type:         src.Type,
		Status:       models.CampaignStatusDraft,
		TargetGroups: src.TargetGroups,
		Subject:      src.Subject,
		Content:      src.Content,
		Design:       src.Design,
	}
	if err := s.Create(ctx, actorID, dup); err != nil {
		return nil, err
	}

	s.log.Info("campaign duplicated",
		zap.String("source_id", src.ID.String()),
		zap.String("campaign_id", dup.ID.String()),
	)
	return dup, nil
}

func (s *CampaignService) Delete(ctx context.Context, actorID, id uuid.UUID, kind string) error {
	if _, err := s.GetByID(ctx, id, kind); err != nil {
		return err
	}
	if err := s.campaigns.Delete(ctx, id); err != nil {
		return storeErr(err, kindName(kind), "")
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "campaign_deleted",
		EntityType:  "campaign",
		EntityID:    &id,
	})
	return nil
}

func kindName(kind string) string {
	if kind == "" {
		return "campaign"
	}
	return kind
}
