package dto

import (
	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/models"
)

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type ContactCreatedResponse struct {
	ContactID uuid.UUID       `json:"contactId"`
	Contact   *models.Contact `json:"contact"`
}

type UnsubscribedResponse struct {
	OK      bool   `json:"ok"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
