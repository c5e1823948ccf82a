package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
	"github.com/DriveBook/DriveBook/internal/common/auth"
	"github.com/DriveBook/DriveBook/internal/common/config"
	"github.com/google/uuid"
)

// Service implements register/login/profile on the user store.
type Service struct {
	repo    Repo
	authCfg config.AuthConfig
}

func NewService(repo Repo, authCfg config.AuthConfig) *Service {
	return &Service{repo: repo, authCfg: authCfg}
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Username string
	Password string
	Nickname string
	Email    string
}

// Register creates a new user with the user role. The configured bootstrap
// username additionally receives admin.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("username and password required: %w", apperr.ErrValidation)
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("username %q already exists: %w", username, apperr.ErrConflict)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password, salt)
	if err != nil {
		return nil, err
	}

	roles := []Role{RoleUser}
	if s.authCfg.BootstrapAdmin != "" && username == s.authCfg.BootstrapAdmin {
		roles = append(roles, RoleAdmin)
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Nickname:     strings.TrimSpace(in.Nickname),
		Email:        strings.TrimSpace(in.Email),
		Roles:        RolesJoin(roles),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// LoginResult is the issued token plus the authenticated user.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *User
}

// Login verifies credentials and issues an access token with the user's
// roles in the claims.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password required: %w", apperr.ErrValidation)
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !VerifyPassword(password, u.PasswordSalt, u.PasswordHash) {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}

	token, exp, err := auth.GenerateAccessToken(s.authCfg, u.ID, RoleNames(u.RolesSlice()), 24*time.Hour)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, ExpiresAt: exp, User: u}, nil
}

// Profile returns the user owning the given id.
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("missing user id: %w", apperr.ErrUnauthorized)
	}
	return s.repo.FindByID(ctx, userID)
}
