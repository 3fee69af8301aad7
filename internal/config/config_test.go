package config_test

import (
	"testing"
	"time"

	"github.com/BradenHooton/coffer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-test-secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "coffer", cfg.Database.Name)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Throttle.MaxFailedAttempts)
	assert.Equal(t, 1800*time.Second, cfg.Throttle.LockoutWindow)
	assert.Equal(t, 10*time.Minute, cfg.Throttle.SweepInterval)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_RequiresDBPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-test-secret")
	t.Setenv("DB_PASSWORD", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_RejectsShortJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ThrottleOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_MAX_FAILED_ATTEMPTS", "3")
	t.Setenv("LOGIN_LOCKOUT_WINDOW", "5m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Throttle.MaxFailedAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Throttle.LockoutWindow)
}

func TestLoad_RejectsNonPositiveThrottleSettings(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_MAX_FAILED_ATTEMPTS", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "db", Port: 5433, User: "app", Password: "pw", Name: "coffer", SSLMode: "disable",
	}

	assert.Equal(t, "host=db port=5433 user=app password=pw dbname=coffer sslmode=disable", cfg.DSN())
}
