package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/models"
	"go.uber.org/zap"
)

const duplicateGroupMsg = "a group with this name already exists"

type GroupService struct {
	groups GroupStore
	log    *zap.Logger
}

func NewGroupService(groups GroupStore, log *zap.Logger) *GroupService {
	return &GroupService{groups: groups, log: log}
}

func (s *GroupService) Create(ctx context.Context, g *models.ContactGroup) error {
	name, err := required("name", g.Name)
	if err != nil {
		return err
	}
	g.Name = name
	g.Description = strings.TrimSpace(g.Description)
	return storeErr(s.groups.Create(ctx, g), "group", duplicateGroupMsg)
}

func (s *GroupService) GetByID(ctx context.Context, id uuid.UUID) (*models.ContactGroup, error) {
	g, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "group", "")
	}
	return g, nil
}

func (s *GroupService) List(ctx context.Context) ([]models.ContactGroup, error) {
	return s.groups.List(ctx)
}

// Update renames or re-describes a group; members follow a rename.
func (s *GroupService) Update(ctx context.Context, id uuid.UUID, name, description *string) (*models.ContactGroup, error) {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		n, err := required("name", *name)
		if err != nil {
			return nil, err
		}
		g.Name = n
	}
	if description != nil {
		g.Description = strings.TrimSpace(*description)
	}

	if err := s.groups.Update(ctx, g); err != nil {
		return nil, storeErr(err, "group", duplicateGroupMsg)
	}
	s.log.Info("contact group updated", zap.String("group_id", g.ID.String()), zap.String("name", g.Name))
	return g, nil
}

func (s *GroupService) Delete(ctx context.Context, id uuid.UUID) error {
	return storeErr(s.groups.Delete(ctx, id), "group", "")
}
