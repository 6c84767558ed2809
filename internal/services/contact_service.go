package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/repositories"
	"go.uber.org/zap"
)

type ContactService struct {
	contacts ContactStore
	log      *zap.Logger
}

func NewContactService(contacts ContactStore, log *zap.Logger) *ContactService {
	return &ContactService{contacts: contacts, log: log}
}

func (s *ContactService) validate(c *models.Contact) error {
	name, err := required("name", c.Name)
	if err != nil {
		return err
	}
	email, err := normalizeEmail("email", c.Email)
	if err != nil {
		return err
	}
	c.Name, c.Email = name, email
	return nil
}

// Create stores a contact. Duplicate emails are accepted.
func (s *ContactService) Create(ctx context.Context, c *models.Contact) error {
	if err := s.validate(c); err != nil {
		return err
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return err
	}
	s.log.Debug("contact created", zap.String("contact_id", c.ID.String()))
	return nil
}

func (s *ContactService) GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	c, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "contact", "")
	}
	return c, nil
}

func (s *ContactService) List(ctx context.Context, f repositories.ContactFilter) ([]models.Contact, error) {
	return s.contacts.List(ctx, f)
}

// ContactPatch carries the fields an update may change; nil leaves a field as is.
type ContactPatch struct {
	Name  *string
	Email *string
	Phone *string
	Group *string
	Opt1  *bool
	Opt2  *bool
	Opt3  *bool
	Notes *string
}

func (s *ContactService) Update(ctx context.Context, id uuid.UUID, p ContactPatch) (*models.Contact, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyString(&c.Name, p.Name)
	applyString(&c.Email, p.Email)
	applyString(&c.Phone, p.Phone)
	applyString(&c.Group, p.Group)
	applyString(&c.Notes, p.Notes)
	applyBool(&c.Opt1, p.Opt1)
	applyBool(&c.Opt2, p.Opt2)
	applyBool(&c.Opt3, p.Opt3)

	if err := s.validate(c); err != nil {
		return nil, err
	}
	if err := s.contacts.Update(ctx, c); err != nil {
		return nil, storeErr(err, "contact", "")
	}
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	return storeErr(s.contacts.Delete(ctx, id), "contact", "")
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func applyBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
