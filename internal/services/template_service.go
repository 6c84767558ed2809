package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/models"
	"go.uber.org/zap"
)

const duplicateTemplateMsg = "a template with this name already exists"

type TemplateService struct {
	templates TemplateStore
	log       *zap.Logger
}

func NewTemplateService(templates TemplateStore, log *zap.Logger) *TemplateService {
	return &TemplateService{templates: templates, log: log}
}

func (s *TemplateService) Create(ctx context.Context, t *models.Template) error {
	name, err := required("name", t.Name)
	if err != nil {
		return err
	}
	t.Name = name
	return storeErr(s.templates.Create(ctx, t), "template", duplicateTemplateMsg)
}

func (s *TemplateService) GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "template", "")
	}
	return t, nil
}

func (s *TemplateService) List(ctx context.Context, category *string) ([]models.Template, error) {
	return s.templates.List(ctx, category)
}

type TemplatePatch struct {
	Name     *string
	Subject  *string
	Category *string
	Content  *string
	Design   models.RawJSON
}

func (s *TemplateService) Update(ctx context.Context, id uuid.UUID, p TemplatePatch) (*models.Template, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyString(&t.Name, p.Name)
	applyString(&t.Subject, p.Subject)
	applyString(&t.Category, p.Category)
	applyString(&t.Content, p.Content)
	if p.Design != nil {
		t.Design = p.Design
	}

	if t.Name, err = required("name", t.Name); err != nil {
		return nil, err
	}
	if err := s.templates.Update(ctx, t); err != nil {
		return nil, storeErr(err, "template", duplicateTemplateMsg)
	}
	return t, nil
}

func (s *TemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	return storeErr(s.templates.Delete(ctx, id), "template", "")
}
