package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/coffer/internal/auth"
	"github.com/BradenHooton/coffer/internal/models"
	"github.com/BradenHooton/coffer/internal/throttle"
	pkgauth "github.com/BradenHooton/coffer/pkg/auth"
	pkglogger "github.com/BradenHooton/coffer/pkg/logger"
)

// LoginThrottle gates authentication attempts per identity
type LoginThrottle interface {
	Check(identity string) throttle.Decision
	RecordFailure(identity string)
	RecordSuccess(identity string)
}

// PasswordVerifier verifies a plaintext password against a stored hash
type PasswordVerifier interface {
	Verify(hash, password string) error
}

// bcryptVerifier is the default PasswordVerifier
type bcryptVerifier struct{}

func (bcryptVerifier) Verify(hash, password string) error {
	return pkgauth.ComparePassword(hash, password)
}

// AuthService handles authentication business logic
type AuthService struct {
	repo        UserRepository
	throttle    LoginThrottle
	verifier    PasswordVerifier
	tm          *auth.TokenManager
	timing      *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, th LoginThrottle, tm *auth.TokenManager, timing *auth.TimingDelay, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		throttle:    th,
		verifier:    bcryptVerifier{},
		tm:          tm,
		timing:      timing,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// SetPasswordVerifier swaps the password verifier; tests use this to
// avoid bcrypt cost.
func (s *AuthService) SetPasswordVerifier(v PasswordVerifier) {
	s.verifier = v
}

// AuthResponse represents the response from a successful login
type AuthResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         models.UserSummary `json:"user"`
}

// Login authenticates a user and returns tokens.
//
// The throttle is consulted before the store or the hasher: a locked
// identity is rejected with *models.LockedError carrying the remaining
// wait, without a password comparison. Unknown email and wrong
// password both record a failure and surface the same generic
// ErrUnauthorized so callers cannot tell which was wrong.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (*AuthResponse, error) {
	start := time.Now()

	if email = strings.ToLower(strings.TrimSpace(email)); email == "" {
		s.logger.Warn("login attempt with empty email")
		return nil, models.ErrUnauthorized
	}

	decision := s.throttle.Check(email)
	if !decision.Allowed {
		s.logger.Info("login blocked by lockout",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Duration("retry_after", decision.RetryAfter))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_locked",
			IPAddress:     ipAddress,
			UserAgent:     userAgent,
			FailureReason: "too_many_attempts",
			Success:       false,
		})
		return nil, &models.LockedError{RetryAfter: decision.RetryAfter}
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.throttle.RecordFailure(email)
			s.logger.Info("login failed: invalid credentials")
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				IPAddress:     ipAddress,
				UserAgent:     userAgent,
				FailureReason: "invalid_credentials",
				Success:       false,
			})
			s.timing.WaitFrom(start)
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.verifier.Verify(user.PasswordHash, password); err != nil {
		s.throttle.RecordFailure(email)
		s.logger.Info("login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			IPAddress:     ipAddress,
			UserAgent:     userAgent,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		s.timing.WaitFrom(start)
		return nil, models.ErrUnauthorized
	}

	s.throttle.RecordSuccess(email)

	accessToken, err := s.tm.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, err := s.tm.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Success:   true,
	})

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Summary(),
	}, nil
}

// RefreshToken generates a new token pair from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*AuthResponse, error) {
	if refreshTokenString = strings.TrimSpace(refreshTokenString); refreshTokenString == "" {
		return nil, models.ErrUnauthorized
	}

	claims, err := s.tm.ValidateToken(refreshTokenString)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		return nil, models.ErrUnauthorized
	}

	if claims.Type != "refresh" {
		s.logger.Warn("refresh attempt with non-refresh token", slog.String("user_id", claims.UserID))
		return nil, models.ErrUnauthorized
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found for token refresh", slog.String("user_id", claims.UserID))
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user for token refresh", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	accessToken, err := s.tm.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	newRefreshToken, err := s.tm.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("token refreshed", slog.String("user_id", user.ID))

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		User:         user.Summary(),
	}, nil
}
