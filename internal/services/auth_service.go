package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/auth"
	"github.com/pulse-crm/backend/internal/config"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/rbac"
	"github.com/pulse-crm/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	invalidCredentialsMsg = "Invalid email or password"
	minPasswordLength     = 8
)

// dummyHash is compared against when the email is unknown so both failure paths cost a bcrypt round.
var dummyHash, _ = auth.HashPassword("timing-equaliser")

type AuthService struct {
	users UserStore
	audit AuditLogger
	cfg   *config.Config
	log   *zap.Logger
}

func NewAuthService(users UserStore, audit AuditLogger, cfg *config.Config, log *zap.Logger) *AuthService {
	return &AuthService{users: users, audit: audit, cfg: cfg, log: log}
}

type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *AuthService) issue(u *models.User) (*Session, error) {
	token, err := auth.GenerateJWT(s.cfg.JWTSecret, u.ID, u.Email, u.Role, s.cfg.JWTExpiration)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name, err := required("name", name)
	if err != nil {
		return nil, err
	}
	email, err = normalizeEmail("email", email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", "password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{Name: name, Email: email, PasswordHash: hash, Role: rbac.RoleUser}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, storeErr(err, "user", "email already registered")
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &u.ID,
		ActorType:   models.ActorUser,
		Action:      "user_registered",
		EntityType:  "user",
		EntityID:    &u.ID,
	})
	return s.issue(u)
}

// Login answers the same way for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if u == nil {
		auth.CheckPassword(dummyHash, password)
		return nil, unauthorized(invalidCredentialsMsg)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, unauthorized(invalidCredentialsMsg)
	}
	return s.issue(u)
}

// Verify resolves a bearer's claims back to a current user row.
func (s *AuthService) Verify(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, unauthorized("user no longer exists")
		}
		return nil, err
	}
	return u, nil
}

type ResetPasswordInput struct {
	Email           string
	CurrentPassword string
	NewPassword     string
}

// ResetPassword changes the caller's own password given the current one,
// or any user's password when the caller may manage users.
func (s *AuthService) ResetPassword(ctx context.Context, actor *auth.Claims, in ResetPasswordInput) error {
	if len(in.NewPassword) < minPasswordLength {
		return invalid("new_password", "new_password must be at least 8 characters")
	}

	target := actor.Email
	if in.Email != "" {
		target = in.Email
	}

	u, err := s.users.GetByEmail(ctx, target)
	if err != nil {
		return storeErr(err, "user", "")
	}

	if u.ID == actor.UserID {
		if !auth.CheckPassword(u.PasswordHash, in.CurrentPassword) {
			return unauthorized("current password is incorrect")
		}
	} else if !rbac.HasPermission(actor.Role, rbac.PermManageUsers) {
		return forbidden("admin access required")
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return storeErr(err, "user", "")
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &actor.UserID,
		ActorType:   models.ActorUser,
		Action:      "password_reset",
		EntityType:  "user",
		EntityID:    &u.ID,
	})
	s.log.Info("password reset", zap.String("user_id", u.ID.String()), zap.String("by", actor.UserID.String()))
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user", "")
	}
	return u, nil
}

type UserPatch struct {
	Name  *string
	Email *string
	Role  *string
}

func (s *AuthService) UpdateUser(ctx context.Context, actor *auth.Claims, id uuid.UUID, p UserPatch) (*models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		if u.Name, err = required("name", *p.Name); err != nil {
			return nil, err
		}
	}
	if p.Email != nil {
		if u.Email, err = normalizeEmail("email", *p.Email); err != nil {
			return nil, err
		}
	}
	if p.Role != nil {
		if !rbac.IsValidRole(*p.Role) {
			return nil, invalid("role", "role must be admin or user")
		}
		if u.ID == actor.UserID && *p.Role != u.Role {
			return nil, forbidden("cannot change your own role")
		}
		u.Role = *p.Role
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, storeErr(err, "user", "email already registered")
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &actor.UserID,
		ActorType:   models.ActorUser,
		Action:      "user_updated",
		EntityType:  "user",
		EntityID:    &u.ID,
		Meta:        map[string]any{"role": u.Role},
	})
	return u, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, actor *auth.Claims, id uuid.UUID) error {
	if id == actor.UserID {
		return forbidden("cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return storeErr(err, "user", "")
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &actor.UserID,
		ActorType:   models.ActorUser,
		Action:      "user_deleted",
		EntityType:  "user",
		EntityID:    &id,
	})
	return nil
}
