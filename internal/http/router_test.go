package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/auth"
	"github.com/pulse-crm/backend/internal/config"
	"github.com/pulse-crm/backend/internal/http/handlers"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/rbac"
	"github.com/pulse-crm/backend/internal/repositories"
	"github.com/pulse-crm/backend/internal/services"
	"go.uber.org/zap"
)

type memCampaigns struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Campaign
}

func (m *memCampaigns) Create(_ context.Context, c *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	m.rows[c.ID] = *c
	return nil
}

func (m *memCampaigns) GetByID(_ context.Context, id uuid.UUID) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (m *memCampaigns) Update(_ context.Context, c *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[c.ID] = *c
	return nil
}

func (m *memCampaigns) UpdateStatus(context.Context, uuid.UUID, string) error { return nil }

func (m *memCampaigns) CompleteIfDrained(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

func (m *memCampaigns) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memCampaigns) List(_ context.Context, f repositories.CampaignFilter) ([]models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Campaign{}
	for _, c := range m.rows {
		if f.Type != nil && c.Type != *f.Type {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type memUsers struct {
	rows []models.User
}

func (m *memUsers) Create(context.Context, *models.User) error { return nil }

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range m.rows {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memUsers) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}

func (m *memUsers) List(context.Context) ([]models.User, error)              { return m.rows, nil }
func (m *memUsers) Update(context.Context, *models.User) error               { return nil }
func (m *memUsers) UpdatePassword(context.Context, uuid.UUID, string) error { return nil }
func (m *memUsers) Delete(context.Context, uuid.UUID) error                 { return nil }

type nopAudit struct{}

func (nopAudit) Log(context.Context, models.AuditLog) error { return nil }

type routerFixture struct {
	app       *fiber.App
	cfg       *config.Config
	campaigns *memCampaigns
	admin     models.User
	member    models.User
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	log := zap.NewNop()
	f := &routerFixture{
		app:       fiber.New(),
		cfg:       &config.Config{JWTSecret: "secret", CORSOrigins: "*"},
		campaigns: &memCampaigns{rows: map[uuid.UUID]models.Campaign{}},
		admin:     models.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", Role: rbac.RoleAdmin},
		member:    models.User{ID: uuid.New(), Name: "Max", Email: "max@example.com", Role: rbac.RoleUser},
	}

	authService := services.NewAuthService(&memUsers{rows: []models.User{f.admin, f.member}}, nopAudit{}, f.cfg, log)
	campaignService := services.NewCampaignService(f.campaigns, nopAudit{}, log)

	SetupRouter(f.app, f.cfg, log, nil, Handlers{
		Users:       handlers.NewUserHandler(authService, log),
		Campaigns:   handlers.NewCampaignHandler("", campaignService, nil, nil, log),
		Newsletters: handlers.NewCampaignHandler(models.CampaignTypeNewsletter, campaignService, nil, nil, log),
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, path string, as *models.User, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != nil {
		token, err := auth.GenerateJWT(f.cfg.JWTSecret, as.ID, as.Email, as.Role, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

func TestUsersRequireAdmin(t *testing.T) {
	f := newRouterFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		as     *models.User
		status int
	}{
		{"list anonymous", fiber.MethodGet, "/api/users", nil, fiber.StatusUnauthorized},
		{"list as user", fiber.MethodGet, "/api/users", &f.member, fiber.StatusForbidden},
		{"list as admin", fiber.MethodGet, "/api/users", &f.admin, fiber.StatusOK},
		{"get as user", fiber.MethodGet, "/api/users/" + f.admin.ID.String(), &f.member, fiber.StatusForbidden},
		{"get as admin", fiber.MethodGet, "/api/users/" + f.member.ID.String(), &f.admin, fiber.StatusOK},
		{"delete as user", fiber.MethodDelete, "/api/users/" + f.admin.ID.String(), &f.member, fiber.StatusForbidden},
		{"admin deletes self", fiber.MethodDelete, "/api/users/" + f.admin.ID.String(), &f.admin, fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := f.do(t, tt.method, tt.path, tt.as, "")
			if status != tt.status {
				t.Errorf("status = %d, want %d (%s)", status, tt.status, raw)
			}
		})
	}
}

func TestNewslettersView(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	plain := &models.Campaign{Title: "Plain", Type: models.CampaignTypeCampaign, Status: models.CampaignStatusDraft}
	if err := f.campaigns.Create(ctx, plain); err != nil {
		t.Fatal(err)
	}

	status, raw := f.do(t, fiber.MethodPost, "/api/newsletters", &f.member, `{"title":"Monthly"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d (%s)", status, raw)
	}
	var created models.Campaign
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatal(err)
	}
	if created.Type != models.CampaignTypeNewsletter {
		t.Errorf("created type = %q, want newsletter", created.Type)
	}

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"newsletter via newsletters", "/api/newsletters/" + created.ID.String(), fiber.StatusOK},
		{"newsletter via campaigns", "/api/campaigns/" + created.ID.String(), fiber.StatusOK},
		{"campaign via campaigns", "/api/campaigns/" + plain.ID.String(), fiber.StatusOK},
		{"campaign via newsletters", "/api/newsletters/" + plain.ID.String(), fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := f.do(t, fiber.MethodGet, tt.path, &f.member, "")
			if status != tt.status {
				t.Errorf("status = %d, want %d (%s)", status, tt.status, raw)
			}
		})
	}

	t.Run("list only newsletters", func(t *testing.T) {
		status, raw := f.do(t, fiber.MethodGet, "/api/newsletters", &f.member, "")
		if status != fiber.StatusOK {
			t.Fatalf("status = %d (%s)", status, raw)
		}
		var list []models.Campaign
		if err := json.Unmarshal(raw, &list); err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].ID != created.ID {
			t.Errorf("list = %+v", list)
		}
	})
}
