package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/models"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func TestCampaignDuplicate(t *testing.T) {
	ctx := context.Background()
	src := &models.Campaign{
		ID:           uuid.New(),
		Title:        "Spring Sale",
		Type:         models.CampaignTypeNewsletter,
		Status:       models.CampaignStatusSent,
		TargetGroups: "VIP,Leads",
		Subject:      "Hello",
		Content:      "<p>Hi</p>",
	}
	campaigns := newFakeCampaigns(src)
	svc := NewCampaignService(campaigns, nopAudit{}, zap.NewNop())

	dup, err := svc.Duplicate(ctx, uuid.New(), src.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if dup.ID == src.ID {
		t.Fatal("duplicate reused the source id")
	}

	tests := []struct {
		field, got, want string
	}{
		{"title", dup.Title, "Spring Sale (Copy)"},
		{"status", dup.Status, models.CampaignStatusDraft},
		{"type", dup.Type, models.CampaignTypeNewsletter},
		{"target_groups", dup.TargetGroups, "VIP,Leads"},
		{"content", dup.Content, "<p>Hi</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
			}
		})
	}

	if c, _ := campaigns.GetByID(ctx, src.ID); c.Status != models.CampaignStatusSent || c.Title != "Spring Sale" {
		t.Errorf("source changed: %+v", c)
	}
}

func TestCampaignUpdateTargetGroups(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		groups []string
		want   string
	}{
		{"joined", []string{"VIP", "Leads"}, "VIP,Leads"},
		{"trimmed and blanks dropped", []string{" VIP ", "", "Leads "}, "VIP,Leads"},
		{"empty list clears", []string{}, ""},
		{"nil keeps current", nil, "Old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.Campaign{ID: uuid.New(), Title: "T", Type: models.CampaignTypeCampaign,
				Status: models.CampaignStatusDraft, TargetGroups: "Old"}
			svc := NewCampaignService(newFakeCampaigns(c), nopAudit{}, zap.NewNop())

			got, err := svc.Update(ctx, uuid.New(), c.ID, "", CampaignPatch{TargetGroups: tt.groups})
			if err != nil {
				t.Fatal(err)
			}
			if got.TargetGroups != tt.want {
				t.Errorf("target_groups = %q, want %q", got.TargetGroups, tt.want)
			}
		})
	}
}

func TestCampaignKind(t *testing.T) {
	ctx := context.Background()
	plain := &models.Campaign{ID: uuid.New(), Title: "Plain", Type: models.CampaignTypeCampaign, Status: models.CampaignStatusDraft}
	news := &models.Campaign{ID: uuid.New(), Title: "News", Type: models.CampaignTypeNewsletter, Status: models.CampaignStatusDraft}
	svc := NewCampaignService(newFakeCampaigns(plain, news), nopAudit{}, zap.NewNop())

	tests := []struct {
		name    string
		id      uuid.UUID
		kind    string
		wantErr error
	}{
		{"campaign via campaigns", plain.ID, "", nil},
		{"newsletter via campaigns", news.ID, "", nil},
		{"newsletter via newsletters", news.ID, models.CampaignTypeNewsletter, nil},
		{"campaign via newsletters", plain.ID, models.CampaignTypeNewsletter, ErrNotFound},
		{"unknown id", uuid.New(), "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetByID(ctx, tt.id, tt.kind)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("newsletter view cannot delete a campaign", func(t *testing.T) {
		if err := svc.Delete(ctx, uuid.New(), plain.ID, models.CampaignTypeNewsletter); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want not found", err)
		}
		if _, err := svc.GetByID(ctx, plain.ID, ""); err != nil {
			t.Errorf("campaign was deleted: %v", err)
		}
	})

	t.Run("create defaults", func(t *testing.T) {
		c := &models.Campaign{Title: "  New  "}
		if err := svc.Create(ctx, uuid.New(), c); err != nil {
			t.Fatal(err)
		}
		if c.Title != "New" || c.Type != models.CampaignTypeCampaign || c.Status != models.CampaignStatusDraft {
			t.Errorf("created = %+v", c)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), plain.ID, "", CampaignPatch{Status: strPtr("paused")})
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "status" {
			t.Errorf("err = %v, want status validation error", err)
		}
	})
}
