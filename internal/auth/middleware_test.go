package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedHandler(t *testing.T, sawUser *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r)
		require.NotNil(t, claims)
		*sawUser = claims.UserID
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_ValidToken(t *testing.T) {
	tm := newTestTokenManager()
	tokenString, err := tm.GenerateAccessToken("user-1", "user@example.com")
	require.NoError(t, err)

	var sawUser string
	handler := Middleware(tm)(protectedHandler(t, &sawUser))

	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", sawUser)
}

func TestMiddleware_MissingHeader(t *testing.T) {
	tm := newTestTokenManager()
	var sawUser string
	handler := Middleware(tm)(protectedHandler(t, &sawUser))

	req := httptest.NewRequest("GET", "/users", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, sawUser)
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	tm := newTestTokenManager()
	var sawUser string
	handler := Middleware(tm)(protectedHandler(t, &sawUser))

	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_RejectsRefreshToken(t *testing.T) {
	tm := newTestTokenManager()
	tokenString, err := tm.GenerateRefreshToken("user-1", "user@example.com")
	require.NoError(t, err)

	var sawUser string
	handler := Middleware(tm)(protectedHandler(t, &sawUser))

	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, sawUser)
}

func TestTimingDelay_EnforcesMinimumElapsed(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 20})

	start := time.Now()
	td.WaitFrom(start)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestTimingDelay_NoSleepWhenAlreadyElapsed(t *testing.T) {
	td := NewTimingDelay(TimingConfig{BaseDelayMs: 10})

	start := time.Now().Add(-50 * time.Millisecond)
	before := time.Now()
	td.WaitFrom(start)
	assert.Less(t, time.Since(before), 10*time.Millisecond)
}
