package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
)

// LockedError reports a login lockout. It is an expected flow-control
// outcome, not a defect: the caller should surface the remaining wait
// and allow a retry after the window elapses.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("too many failed login attempts, try again in %.2f minutes", e.RetryAfterMinutes())
}

// RetryAfterMinutes returns the remaining wait in minutes, rounded to
// two decimal places for display.
func (e *LockedError) RetryAfterMinutes() float64 {
	minutes := e.RetryAfter.Minutes()
	return float64(int64(minutes*100+0.5)) / 100
}
