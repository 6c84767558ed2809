package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pulse-crm/backend/internal/http/dto"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/services"
	"go.uber.org/zap"
)

// PreferenceHandler serves the public links embedded in mail. No authentication.
type PreferenceHandler struct {
	preferenceService *services.PreferenceService
	log               *zap.Logger
}

func NewPreferenceHandler(preferenceService *services.PreferenceService, log *zap.Logger) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: preferenceService, log: log}
}

func (h *PreferenceHandler) GetPreferences(c *fiber.Ctx) error {
	prefs, err := h.preferenceService.Get(c.Context(), c.Query("email"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(prefs)
}

func (h *PreferenceHandler) UpdatePreferences(c *fiber.Ctx) error {
	var req dto.PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	prefs := models.Preferences{Email: req.Email, Opt1: req.Opt1, Opt2: req.Opt2, Opt3: req.Opt3}
	if err := h.preferenceService.Update(c.Context(), prefs); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: prefs})
}

// LegacyUnsubscribe takes the encoded address from ?e= or, on POST, from the body.
func (h *PreferenceHandler) LegacyUnsubscribe(c *fiber.Ctx) error {
	encoded := c.Query("e", c.Query("email"))
	if encoded == "" && c.Method() == fiber.MethodPost {
		var req dto.LegacyUnsubscribeRequest
		if err := c.BodyParser(&req); err == nil {
			encoded = req.E
			if encoded == "" {
				encoded = req.Email
			}
		}
	}

	email, err := h.preferenceService.LegacyUnsubscribe(c.Context(), encoded)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.UnsubscribedResponse{
		OK:      true,
		Email:   email,
		Message: "You have been unsubscribed from all communications.",
	})
}
