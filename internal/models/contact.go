package models

import (
	"time"

	"github.com/google/uuid"
)

// UnsubscribedGroup is where the legacy unsubscribe link moves a contact.
const UnsubscribedGroup = "Unsubscribed"

type Contact struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Group     string    `json:"group"`
	Opt1      bool      `json:"opt1"`
	Opt2      bool      `json:"opt2"`
	Opt3      bool      `json:"opt3"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Preferences struct {
	Email string `json:"email"`
	Opt1  bool   `json:"opt1"`
	Opt2  bool   `json:"opt2"`
	Opt3  bool   `json:"opt3"`
}

type ContactGroup struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ContactCount int       `json:"contact_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
