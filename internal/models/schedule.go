package models

import (
	"time"

	"github.com/google/uuid"
)

// Schedule statuses
const (
	ScheduleStatusScheduled  = "scheduled"
	ScheduleStatusProcessing = "processing"
	ScheduleStatusSent       = "sent"
	ScheduleStatusFailed     = "failed"
)

// Recipient types
const (
	RecipientAll        = "all"
	RecipientGroup      = "group"
	RecipientIndividual = "individual"
)

// ValidScheduleTransitions: from -> []to. A schedule fires once; terminal states are never revisited.
var ValidScheduleTransitions = map[string][]string{
	ScheduleStatusScheduled:  {ScheduleStatusProcessing},
	ScheduleStatusProcessing: {ScheduleStatusSent, ScheduleStatusFailed},
	ScheduleStatusSent:       {},
	ScheduleStatusFailed:     {},
}

func IsValidScheduleTransition(from, to string) bool {
	allowed, ok := ValidScheduleTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ScheduleSourcesFor lists the statuses a schedule may move to `to` from.
func ScheduleSourcesFor(to string) []string {
	var from []string
	for _, f := range []string{ScheduleStatusScheduled, ScheduleStatusProcessing, ScheduleStatusSent, ScheduleStatusFailed} {
		if IsValidScheduleTransition(f, to) {
			from = append(from, f)
		}
	}
	return from
}

func IsValidRecipientType(t string) bool {
	switch t {
	case RecipientAll, RecipientGroup, RecipientIndividual:
		return true
	}
	return false
}

type Schedule struct {
	ID             uuid.UUID `json:"id"`
	CampaignID     uuid.UUID `json:"campaign_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Status         string    `json:"status"`
	RecipientType  string    `json:"recipient_type"`
	RecipientEmail *string   `json:"recipient_email,omitempty"`
	RecipientGroup *string   `json:"recipient_group,omitempty"`
	ErrorMessage   *string   `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ScheduleWithCampaign is a schedule joined with the parts of its campaign a send needs.
type ScheduleWithCampaign struct {
	Schedule
	CampaignTitle   string  `json:"campaign_title"`
	CampaignSubject string  `json:"campaign_subject"`
	CampaignContent string  `json:"-"`
	CampaignDesign  RawJSON `json:"-"`
}
