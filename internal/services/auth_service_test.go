package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/coffer/internal/auth"
	"github.com/BradenHooton/coffer/internal/models"
	"github.com/BradenHooton/coffer/internal/throttle"
	pkglogger "github.com/BradenHooton/coffer/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newAuthService(repo UserRepository) (*AuthService, *throttle.Tracker) {
	logger := discardLogger()
	tracker := throttle.New(5, 1800*time.Second)
	tm := auth.NewTokenManager("unit-test-secret-key-material", 15*time.Minute, 24*time.Hour)
	timing := auth.NewTimingDelay(auth.TimingConfig{})

	svc := NewAuthService(repo, tracker, tm, timing, logger, pkglogger.NewAuditLogger(logger))
	svc.SetPasswordVerifier(plaintextVerifier{})
	return svc, tracker
}

func aliceRepo() *MockUserRepository {
	return &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == "alice@example.com" {
				return &models.User{
					ID:           "user-1",
					Name:         "Alice",
					Email:        "alice@example.com",
					PasswordHash: "correct-password",
				}, nil
			}
			return nil, models.ErrNotFound
		},
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newAuthService(aliceRepo())

	resp, err := svc.Login(context.Background(), "alice@example.com", "correct-password", "203.0.113.7", "test-agent")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "user-1", resp.User.ID)
}

func TestLogin_NormalizesEmail(t *testing.T) {
	svc, _ := newAuthService(aliceRepo())

	resp, err := svc.Login(context.Background(), "  ALICE@Example.COM ", "correct-password", "203.0.113.7", "test-agent")

	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)
}

func TestLogin_WrongPasswordIsGenericUnauthorized(t *testing.T) {
	svc, _ := newAuthService(aliceRepo())

	_, err := svc.Login(context.Background(), "alice@example.com", "wrong", "203.0.113.7", "test-agent")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestLogin_UnknownEmailIsGenericUnauthorized(t *testing.T) {
	svc, _ := newAuthService(aliceRepo())

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever", "203.0.113.7", "test-agent")

	// same error as a wrong password, no enumeration
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestLogin_LockedAfterRepeatedFailures(t *testing.T) {
	svc, _ := newAuthService(aliceRepo())
	ctx := context.Background()

	// the first check implicitly counts one attempt, so five failed
	// logins push the counter past the threshold
	for i := 0; i < 5; i++ {
		_, err := svc.Login(ctx, "alice@example.com", "wrong", "203.0.113.7", "test-agent")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	}

	_, err := svc.Login(ctx, "alice@example.com", "correct-password", "203.0.113.7", "test-agent")

	var locked *models.LockedError
	require.ErrorAs(t, err, &locked)
	assert.Greater(t, locked.RetryAfter, time.Duration(0))
	assert.Greater(t, locked.RetryAfterMinutes(), 0.0)
}

func TestLogin_SuccessClearsLockoutState(t *testing.T) {
	svc, tracker := newAuthService(aliceRepo())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = svc.Login(ctx, "alice@example.com", "wrong", "203.0.113.7", "test-agent")
	}

	_, err := svc.Login(ctx, "alice@example.com", "correct-password", "203.0.113.7", "test-agent")
	require.NoError(t, err)

	assert.Equal(t, 0, tracker.Len())
}

func TestLogin_LockoutRejectsWithoutConsultingStore(t *testing.T) {
	storeCalls := 0
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			storeCalls++
			return nil, models.ErrNotFound
		},
	}
	svc, tracker := newAuthService(repo)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		tracker.RecordFailure("alice@example.com")
	}

	_, err := svc.Login(ctx, "alice@example.com", "whatever", "203.0.113.7", "test-agent")

	var locked *models.LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 0, storeCalls)
}

func TestLogin_StoreFailurePropagatesAsInternal(t *testing.T) {
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc, _ := newAuthService(repo)

	_, err := svc.Login(context.Background(), "alice@example.com", "pw", "203.0.113.7", "test-agent")

	assert.ErrorIs(t, err, models.ErrInternalServer)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	repo := aliceRepo()
	repo.GetByIDFunc = func(ctx context.Context, id string) (*models.User, error) {
		if id == "user-1" {
			return &models.User{ID: "user-1", Email: "alice@example.com"}, nil
		}
		return nil, models.ErrNotFound
	}
	svc, _ := newAuthService(repo)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice@example.com", "correct-password", "203.0.113.7", "test-agent")
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	repo := aliceRepo()
	svc, _ := newAuthService(repo)
	ctx := context.Background()

	login, err := svc.Login(ctx, "alice@example.com", "correct-password", "203.0.113.7", "test-agent")
	require.NoError(t, err)

	_, err = svc.RefreshToken(ctx, login.AccessToken)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestRefreshToken_RejectsGarbage(t *testing.T) {
	svc, _ := newAuthService(aliceRepo())

	_, err := svc.RefreshToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.RefreshToken(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
