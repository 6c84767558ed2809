package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/repositories"
)

// The interfaces below are satisfied by the pgx repositories and by in-memory fakes in tests.

type ContactStore interface {
	Create(ctx context.Context, c *models.Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	GetByEmail(ctx context.Context, email string) (*models.Contact, error)
	Update(ctx context.Context, c *models.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f repositories.ContactFilter) ([]models.Contact, error)
	ListAll(ctx context.Context) ([]models.Contact, error)
	ListByGroup(ctx context.Context, group string) ([]models.Contact, error)
	UpdatePreferences(ctx context.Context, p models.Preferences) (int64, error)
	Unsubscribe(ctx context.Context, email, group, note string) (int64, error)
}

type GroupStore interface {
	Create(ctx context.Context, g *models.ContactGroup) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ContactGroup, error)
	List(ctx context.Context) ([]models.ContactGroup, error)
	Update(ctx context.Context, g *models.ContactGroup) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CampaignStore interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	Update(ctx context.Context, c *models.Campaign) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CompleteIfDrained(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f repositories.CampaignFilter) ([]models.Campaign, error)
}

type TemplateStore interface {
	Create(ctx context.Context, t *models.Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error)
	Update(ctx context.Context, t *models.Template) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, category *string) ([]models.Template, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ScheduleStore interface {
	Create(ctx context.Context, s *models.Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduleWithCampaign, error)
	List(ctx context.Context, f repositories.ScheduleFilter) ([]models.ScheduleWithCampaign, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.ScheduleWithCampaign, error)
	UpdatePending(ctx context.Context, s *models.Schedule) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	Fire(ctx context.Context, s *models.Schedule, recipients []models.Recipient) (int64, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type QueueStore interface {
	ClaimPending(ctx context.Context, limit int) ([]models.QueueEntry, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Requeue(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, campaignID *uuid.UUID) (models.QueueStats, error)
}

type OpenStore interface {
	Record(ctx context.Context, o *models.Open) error
	Stats(ctx context.Context, campaignID string) (models.OpenStats, error)
}

type AuditLogger interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

// Locker grants named leases across processes. Acquire returns a nil release func when the lease is taken.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error)
}

var (
	_ ContactStore  = (*repositories.ContactRepo)(nil)
	_ GroupStore    = (*repositories.GroupRepo)(nil)
	_ CampaignStore = (*repositories.CampaignRepo)(nil)
	_ TemplateStore = (*repositories.TemplateRepo)(nil)
	_ UserStore     = (*repositories.UserRepo)(nil)
	_ ScheduleStore = (*repositories.ScheduleRepo)(nil)
	_ QueueStore    = (*repositories.QueueRepo)(nil)
	_ OpenStore     = (*repositories.OpenRepo)(nil)
	_ AuditLogger   = (*repositories.AuditRepo)(nil)
)
