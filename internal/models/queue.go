package models

import (
	"time"

	"github.com/google/uuid"
)

// Queue entry statuses
const (
	QueueStatusPending = "pending"
	QueueStatusSending = "sending"
	QueueStatusSent    = "sent"
	QueueStatusFailed  = "failed"
)

type QueueEntry struct {
	ID           uuid.UUID  `json:"id"`
	CampaignID   uuid.UUID  `json:"campaign_id"`
	ScheduleID   *uuid.UUID `json:"schedule_id,omitempty"`
	ContactID    *uuid.UUID `json:"contact_id,omitempty"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type QueueStats struct {
	Pending int `json:"pending"`
	Sending int `json:"sending"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// Recipient is one resolved delivery target. ContactID is nil for individual sends.
type Recipient struct {
	ContactID *uuid.UUID `json:"contact_id,omitempty"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
}
