package models

import "time"

// Open is one tracking-pixel load. Rows are never deduplicated.
type Open struct {
	ID         int64     `json:"id"`
	CampaignID string    `json:"campaign_id"`
	Email      string    `json:"email"`
	IP         string    `json:"ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	OpenedAt   time.Time `json:"opened_at"`
}

type OpenStats struct {
	Total  int `json:"total"`
	Unique int `json:"unique"`
}
