package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pulse-crm/backend/internal/mailer"
	"github.com/pulse-crm/backend/internal/models"
	"go.uber.org/zap"
)

func newPreferenceFixture() (*fakeContacts, *PreferenceService) {
	contacts := &fakeContacts{rows: []models.Contact{
		{Name: "Ann", Email: "ann@example.com", Group: "VIP", Opt1: true, Opt2: true, Opt3: true},
		{Name: "Ann again", Email: "ANN@example.com", Group: "Leads", Opt1: true, Notes: "met at expo"},
		{Name: "Bob", Email: "bob@example.com", Group: "VIP", Opt1: true},
	}}
	svc := NewPreferenceService(contacts, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC) }
	return contacts, svc
}

func TestLegacyUnsubscribe(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"url base64", mailer.EncodeEmail("ann@example.com"), nil},
		{"plaintext", "ann@example.com", nil},
		{"unknown", mailer.EncodeEmail("zed@example.com"), ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contacts, svc := newPreferenceFixture()
			email, err := svc.LegacyUnsubscribe(context.Background(), tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if email != "ann@example.com" {
				t.Errorf("email = %q", email)
			}

			for _, c := range contacts.rows[:2] {
				if c.Opt1 || c.Opt2 || c.Opt3 {
					t.Errorf("%s still opted in", c.Name)
				}
				if c.Group != models.UnsubscribedGroup {
					t.Errorf("%s group = %q", c.Name, c.Group)
				}
			}
			if got := contacts.rows[1].Notes; got != "met at expo\nUnsubscribed via link on 2025-05-06T07:08:09Z" {
				t.Errorf("notes = %q", got)
			}
			if bob := contacts.rows[2]; !bob.Opt1 || bob.Group != "VIP" {
				t.Errorf("unrelated contact changed: %+v", bob)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		_, svc := newPreferenceFixture()
		var ve *ValidationError
		if _, err := svc.LegacyUnsubscribe(context.Background(), " "); !errors.As(err, &ve) {
			t.Errorf("err = %v, want validation error", err)
		}
	})
}

func TestUpdatePreferences(t *testing.T) {
	contacts, svc := newPreferenceFixture()
	ctx := context.Background()

	if err := svc.Update(ctx, models.Preferences{Email: "Ann@Example.com", Opt2: true}); err != nil {
		t.Fatal(err)
	}
	for _, c := range contacts.rows[:2] {
		if c.Opt1 || !c.Opt2 || c.Opt3 {
			t.Errorf("%s flags = %v %v %v", c.Name, c.Opt1, c.Opt2, c.Opt3)
		}
		if c.Group == models.UnsubscribedGroup {
			t.Errorf("%s group changed by a flag update", c.Name)
		}
	}

	p, err := svc.Get(ctx, "ann@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Opt2 || p.Opt1 {
		t.Errorf("prefs = %+v", p)
	}

	if err := svc.Update(ctx, models.Preferences{Email: "zed@example.com"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}
