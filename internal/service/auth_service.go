package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/report-portal/internal/auth"
	"github.com/spec-kit/report-portal/internal/config"
	"github.com/spec-kit/report-portal/internal/domain"
	"github.com/spec-kit/report-portal/internal/repository"
	apperrors "github.com/spec-kit/report-portal/pkg/util/errorutil"
)

// AuthService coordinates login and secret rotation.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
}

// Session is the result of a successful login.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Authenticate verifies the credentials and issues an access token. Unknown
// usernames and wrong passwords fail the same way.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewInvalidCredentials()
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = auth.CompareDecoy(password)
			s.logger.Info("login failed", zap.String("username", username), zap.String("reason", "unknown user"))
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed", zap.String("username", username), zap.String("reason", "wrong password"))
		return nil, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Username, user.District)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("login succeeded", zap.String("username", user.Username), zap.String("district", user.District))
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

// ChangePassword verifies the current secret before storing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, caller domain.Identity, currentPassword, newPassword string) error {
	if caller.IsZero() {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewInvalidCredentials()
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return apperrors.NewValidationError(err.Error(), map[string]any{"field": "new_password"})
		}
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("password changed", zap.String("username", user.Username))
	return nil
}

// Provision creates an account. Used by bootstrap and tests.
func (s *AuthService) Provision(ctx context.Context, username, password, district string, mainOffice bool) (*domain.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	if mainOffice {
		district = domain.MainOfficeDistrict
	}
	user := &domain.User{
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		District:     district,
		IsMainOffice: mainOffice,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Bootstrap provisions "username:password:district" entries that do not exist
// yet. A district of "*" marks the main office.
func (s *AuthService) Bootstrap(ctx context.Context, entries []string) error {
	for _, entry := range entries {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return fmt.Errorf("invalid bootstrap account %q", maskEntry(entry))
		}
		mainOffice := parts[2] == "*"
		_, err := s.Provision(ctx, parts[0], parts[1], parts[2], mainOffice)
		switch {
		case err == nil:
			s.logger.Info("bootstrap account created", zap.String("username", parts[0]), zap.Bool("main_office", mainOffice))
		case errors.Is(err, repository.ErrUsernameTaken):
		default:
			return fmt.Errorf("bootstrap account %s: %w", parts[0], err)
		}
	}
	return nil
}

func maskEntry(entry string) string {
	if i := strings.Index(entry, ":"); i >= 0 {
		return entry[:i] + ":***"
	}
	return entry
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
