package services

import (
	"context"
	"strings"
	"time"

	"github.com/pulse-crm/backend/internal/mailer"
	"github.com/pulse-crm/backend/internal/models"
	"go.uber.org/zap"
)

// PreferenceService backs the public unsubscribe and preference pages.
// Emails arrive from links, so every lookup is case-insensitive.
type PreferenceService struct {
	contacts ContactStore
	log      *zap.Logger

	now func() time.Time
}

func NewPreferenceService(contacts ContactStore, log *zap.Logger) *PreferenceService {
	return &PreferenceService{contacts: contacts, log: log, now: time.Now}
}

func (s *PreferenceService) Get(ctx context.Context, email string) (*models.Preferences, error) {
	email, err := normalizeEmail("email", email)
	if err != nil {
		return nil, err
	}
	c, err := s.contacts.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err, "contact", "")
	}
	return &models.Preferences{Email: c.Email, Opt1: c.Opt1, Opt2: c.Opt2, Opt3: c.Opt3}, nil
}

// Update writes the three opt flags on every contact row sharing the email.
func (s *PreferenceService) Update(ctx context.Context, p models.Preferences) error {
	email, err := normalizeEmail("email", p.Email)
	if err != nil {
		return err
	}
	p.Email = email

	n, err := s.contacts.UpdatePreferences(ctx, p)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("contact")
	}
	s.log.Info("preferences updated", zap.String("email", email), zap.Int64("rows", n))
	return nil
}

// LegacyUnsubscribe handles the one-click link from older mails. The address may be
// base64 encoded or plain; all flags are cleared and the contact is parked in the
// Unsubscribed group.
func (s *PreferenceService) LegacyUnsubscribe(ctx context.Context, encoded string) (string, error) {
	if strings.TrimSpace(encoded) == "" {
		return "", invalid("e", "email is required")
	}
	email, err := normalizeEmail("e", mailer.DecodeEmail(encoded))
	if err != nil {
		return "", err
	}

	note := "Unsubscribed via link on " + s.now().UTC().Format(time.RFC3339)
	n, err := s.contacts.Unsubscribe(ctx, email, models.UnsubscribedGroup, note)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", notFound("contact")
	}
	s.log.Info("contact unsubscribed", zap.String("email", email), zap.Int64("rows", n))
	return email, nil
}
