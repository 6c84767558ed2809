package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/http/dto"
	"github.com/pulse-crm/backend/internal/middleware"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/repositories"
	"github.com/pulse-crm/backend/internal/services"
	"go.uber.org/zap"
)

// ActivityLister reads the audit trail of one entity.
type ActivityLister interface {
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]models.AuditLog, error)
}

// CampaignHandler serves /campaigns and, with kind set to newsletter, /newsletters.
type CampaignHandler struct {
	kind            string
	campaignService *services.CampaignService
	trackingService *services.TrackingService
	activity        ActivityLister
	log             *zap.Logger
}

func NewCampaignHandler(
	kind string,
	campaignService *services.CampaignService,
	trackingService *services.TrackingService,
	activity ActivityLister,
	log *zap.Logger,
) *CampaignHandler {
	return &CampaignHandler{
		kind:            kind,
		campaignService: campaignService,
		trackingService: trackingService,
		activity:        activity,
		log:             log,
	}
}

func (h *CampaignHandler) what() string {
	if h.kind == "" {
		return "campaign"
	}
	return h.kind
}

// parseDate accepts YYYY-MM-DD or RFC 3339; an empty string clears nothing.
func parseDate(s *string) (*time.Time, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	if t, err := time.Parse("2006-01-02", *s); err == nil {
		return &t, true
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t, true
	}
	return nil, false
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req dto.CampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	date, ok := parseDate(req.Date)
	if !ok {
		return badRequest(c, "date must be YYYY-MM-DD")
	}

	campaign := &models.Campaign{
		Title:        deref(req.Title),
		Date:         date,
		Type:         h.kind,
		Status:       deref(req.Status),
		TargetGroups: models.JoinGroups(req.TargetGroups),
		Subject:      deref(req.Subject),
		Content:      deref(req.Content),
		Design:       req.Design,
	}
	if h.kind == "" && c.Query("type") == models.CampaignTypeNewsletter {
		campaign.Type = models.CampaignTypeNewsletter
	}

	if err := h.campaignService.Create(c.Context(), middleware.GetUserID(c), campaign); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(campaign)
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	filter := repositories.CampaignFilter{
		Type:   queryString(c, "type"),
		Status: queryString(c, "status"),
		Search: queryString(c, "search"),
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	}
	if h.kind != "" {
		kind := h.kind
		filter.Type = &kind
	}

	campaigns, err := h.campaignService.List(c.Context(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(campaigns)
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid "+h.what()+" id")
	}
	campaign, err := h.campaignService.GetByID(c.Context(), id, h.kind)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(campaign)
}

func (h *CampaignHandler) UpdateCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid "+h.what()+" id")
	}

	var req dto.CampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	date, ok := parseDate(req.Date)
	if !ok {
		return badRequest(c, "date must be YYYY-MM-DD")
	}

	updated, err := h.campaignService.Update(c.Context(), middleware.GetUserID(c), id, h.kind, services.CampaignPatch{
		Title:        req.Title,
		Date:         date,
		Status:       req.Status,
		TargetGroups: req.TargetGroups,
		Subject:      req.Subject,
		Content:      req.Content,
		Design:       req.Design,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(updated)
}

func (h *CampaignHandler) DuplicateCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid "+h.what()+" id")
	}
	dup, err := h.campaignService.Duplicate(c.Context(), middleware.GetUserID(c), id, h.kind)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dup)
}

func (h *CampaignHandler) DeleteCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid "+h.what()+" id")
	}
	if err := h.campaignService.Delete(c.Context(), middleware.GetUserID(c), id, h.kind); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// GetStats reports delivery counts and opens.
func (h *CampaignHandler) GetStats(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid "+h.what()+" id")
	}
	if _, err := h.campaignService.GetByID(c.Context(), id, h.kind); err != nil {
		return respondError(c, h.log, err)
	}
	stats, err := h.trackingService.CampaignStats(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}

func (h *CampaignHandler) GetActivity(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid "+h.what()+" id")
	}
	entries, err := h.activity.ListByEntity(c.Context(), "campaign", id, queryInt(c, "limit", 50))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(entries)
}
