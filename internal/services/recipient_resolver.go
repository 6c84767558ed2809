package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pulse-crm/backend/internal/models"
)

// RecipientResolver expands a schedule's audience into delivery targets.
// Opt flags are not consulted: every matching contact is returned.
type RecipientResolver struct {
	contacts ContactStore
}

func NewRecipientResolver(contacts ContactStore) *RecipientResolver {
	return &RecipientResolver{contacts: contacts}
}

func (r *RecipientResolver) Resolve(ctx context.Context, s *models.Schedule) ([]models.Recipient, error) {
	switch s.RecipientType {
	case models.RecipientAll:
		contacts, err := r.contacts.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return fromContacts(contacts), nil

	case models.RecipientGroup:
		if s.RecipientGroup == nil || *s.RecipientGroup == "" {
			return nil, fmt.Errorf("schedule %s has no recipient group", s.ID)
		}
		contacts, err := r.contacts.ListByGroup(ctx, *s.RecipientGroup)
		if err != nil {
			return nil, err
		}
		return fromContacts(contacts), nil

	case models.RecipientIndividual:
		if s.RecipientEmail == nil || strings.TrimSpace(*s.RecipientEmail) == "" {
			return nil, fmt.Errorf("schedule %s has no recipient email", s.ID)
		}
		return []models.Recipient{{Email: strings.TrimSpace(*s.RecipientEmail)}}, nil
	}

	return nil, fmt.Errorf("unknown recipient type %q", s.RecipientType)
}

func fromContacts(contacts []models.Contact) []models.Recipient {
	out := make([]models.Recipient, 0, len(contacts))
	for i := range contacts {
		id := contacts[i].ID
		out = append(out, models.Recipient{
			ContactID: &id,
			Email:     contacts[i].Email,
			Name:      contacts[i].Name,
		})
	}
	return out
}
