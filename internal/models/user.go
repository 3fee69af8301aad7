package models

import (
	"time"

	"github.com/BradenHooton/coffer/pkg/money"
)

type User struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	AccountNumber string
	PasswordHash  string
	Balance       money.Amount // minor units; rendered as a decimal string at the boundary
	Role          string       // e.g., "user", "admin"
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserSummary is the projection of a user record considered safe to
// return to callers. It never carries the password hash.
type UserSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Balance       string `json:"balance"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	AccountNumber string `json:"account_number"`
}

// Summary projects a full user record down to its caller-safe fields.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:            u.ID,
		Name:          u.Name,
		Balance:       u.Balance.String(),
		Email:         u.Email,
		Phone:         u.Phone,
		AccountNumber: u.AccountNumber,
	}
}
