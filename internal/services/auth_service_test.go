package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pulse-crm/backend/internal/auth"
	"github.com/pulse-crm/backend/internal/config"
	"github.com/pulse-crm/backend/internal/rbac"
	"go.uber.org/zap"
)

func newAuthFixture(t *testing.T) (*AuthService, *Session) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiration: time.Hour}
	svc := NewAuthService(&fakeUsers{}, nopAudit{}, cfg, zap.NewNop())
	sess, err := svc.Register(context.Background(), "Ann", "ann@example.com", "correct horse")
	if err != nil {
		t.Fatal(err)
	}
	return svc, sess
}

func TestRegister(t *testing.T) {
	svc, sess := newAuthFixture(t)

	claims, err := auth.ParseJWT("test-secret", sess.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != sess.User.ID || claims.Role != rbac.RoleUser {
		t.Errorf("claims = %+v", claims)
	}

	tests := []struct {
		name, email, password string
		want                  error
	}{
		{"duplicate", "ANN@example.com", "long enough", ErrConflict},
		{"short password", "bob@example.com", "short", nil},
		{"bad email", "bob", "long enough", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), "X", tt.email, tt.password)
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Errorf("err = %v, want %v", err, tt.want)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	tests := []struct {
		name, email, password string
		ok                    bool
	}{
		{"correct", "ann@example.com", "correct horse", true},
		{"wrong password", "ann@example.com", "battery staple", false},
		{"unknown email", "nobody@example.com", "correct horse", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.ok {
				if err != nil || sess.Token == "" {
					t.Fatalf("login failed: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrUnauthorized) || err.Error() != "Invalid email or password" {
				t.Errorf("err = %v, want generic unauthorized", err)
			}
		})
	}
}

func TestDeleteSelf(t *testing.T) {
	svc, sess := newAuthFixture(t)
	actor := &auth.Claims{UserID: sess.User.ID, Role: rbac.RoleAdmin}
	if err := svc.DeleteUser(context.Background(), actor, sess.User.ID); err == nil {
		t.Error("expected self-delete to be refused")
	}
}
