package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Campaign types
const (
	CampaignTypeCampaign   = "campaign"
	CampaignTypeNewsletter = "newsletter"
)

// Campaign statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusSending   = "sending"
	CampaignStatusSent      = "sent"
	CampaignStatusArchived  = "archived"
)

func IsValidCampaignStatus(s string) bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusScheduled, CampaignStatusSending,
		CampaignStatusSent, CampaignStatusArchived:
		return true
	}
	return false
}

// RawJSON is an opaque editor payload stored as JSONB.
type RawJSON = json.RawMessage

type Campaign struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Date         *time.Time `json:"date,omitempty"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	TargetGroups string     `json:"target_groups"`
	Subject      string     `json:"subject"`
	Content      string     `json:"content"`
	Design       RawJSON    `json:"design,omitempty"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// JoinGroups stores a group list the way campaigns keep it: trimmed, comma-joined, blanks dropped.
func JoinGroups(groups []string) string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return strings.Join(out, ",")
}

func SplitGroups(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

type Template struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Category  string    `json:"category"`
	Content   string    `json:"content"`
	Design    RawJSON   `json:"design,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
