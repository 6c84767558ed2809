package dto

import "encoding/json"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email,omitempty"` // empty means the caller
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

// CreateContactRequest: opt flags default to true when omitted.
type CreateContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Group string `json:"group"`
	Opt1  *bool  `json:"opt1,omitempty"`
	Opt2  *bool  `json:"opt2,omitempty"`
	Opt3  *bool  `json:"opt3,omitempty"`
	Notes string `json:"notes"`
}

type UpdateContactRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Group *string `json:"group,omitempty"`
	Opt1  *bool   `json:"opt1,omitempty"`
	Opt2  *bool   `json:"opt2,omitempty"`
	Opt3  *bool   `json:"opt3,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

type GroupRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CampaignRequest serves create and update for campaigns and newsletters.
// Date is YYYY-MM-DD or RFC 3339.
type CampaignRequest struct {
	Title        *string         `json:"title,omitempty"`
	Date         *string         `json:"date,omitempty"`
	Status       *string         `json:"status,omitempty"`
	TargetGroups []string        `json:"target_groups,omitempty"`
	Subject      *string         `json:"subject,omitempty"`
	Content      *string         `json:"content,omitempty"`
	Design       json.RawMessage `json:"design,omitempty"`
}

type TemplateRequest struct {
	Name     *string         `json:"name,omitempty"`
	Subject  *string         `json:"subject,omitempty"`
	Category *string         `json:"category,omitempty"`
	Content  *string         `json:"content,omitempty"`
	Design   json.RawMessage `json:"design,omitempty"`
}

type ScheduleRequest struct {
	CampaignID     string `json:"campaign_id"`
	ScheduledAt    string `json:"scheduled_at"`
	RecipientType  string `json:"recipient_type"`
	RecipientEmail string `json:"recipient_email,omitempty"`
	RecipientGroup string `json:"recipient_group,omitempty"`
}

type PreferencesRequest struct {
	Email string `json:"email"`
	Opt1  bool   `json:"opt1"`
	Opt2  bool   `json:"opt2"`
	Opt3  bool   `json:"opt3"`
}

type LegacyUnsubscribeRequest struct {
	E     string `json:"e"`
	Email string `json:"email"`
}
