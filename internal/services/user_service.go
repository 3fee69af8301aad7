package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/BradenHooton/coffer/internal/models"
	"github.com/BradenHooton/coffer/internal/query"
	"github.com/BradenHooton/coffer/pkg/auth"
	pkglogger "github.com/BradenHooton/coffer/pkg/logger"
	"github.com/BradenHooton/coffer/pkg/money"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	FindAll(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdateBalance(ctx context.Context, id string, balance money.Amount) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// UserService handles user business logic
type UserService struct {
	repo        UserRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// GetUserByAccountNumber retrieves a user by account number
func (s *UserService) GetUserByAccountNumber(ctx context.Context, accountNumber string) (*models.User, error) {
	user, err := s.repo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user by account number", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// QueryUsers runs a listing query over the full user set: filter,
// sort, paginate, and project through the query engine.
func (s *UserService) QueryUsers(ctx context.Context, req query.Request) (*query.Result, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	result, err := query.Run(users, req)
	if err != nil {
		if errors.Is(err, query.ErrUnknownField) {
			return nil, err
		}
		s.logger.Error("query engine failure", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return result, nil
}

// CreateUser creates a new user account with a generated account
// number and a zero opening balance.
func (s *UserService) CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	existingUser, err := s.repo.GetByEmail(ctx, user.Email)
	if err == nil && existingUser != nil {
		s.logger.Info("user already exists")
		return nil, models.ErrConflict
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check if user exists", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := auth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	user.PasswordHash = hashedPassword
	user.Balance = 0

	accountNumber, err := s.generateAccountNumber(ctx)
	if err != nil {
		s.logger.Error("failed to generate account number", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	user.AccountNumber = accountNumber

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user created", slog.String("user_id", createdUser.ID))
	s.auditLogger.LogAccountAction("account_created", createdUser.ID)
	return createdUser, nil
}

// TopUp adds a positive amount to a user's balance. The amount arrives
// as a decimal string and is parsed into minor units before any
// arithmetic.
func (s *UserService) TopUp(ctx context.Context, id, amount string) (*models.User, error) {
	parsed, err := money.Parse(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}
	if !parsed.IsPositive() {
		return nil, fmt.Errorf("%w: top-up amount must be positive", models.ErrBadRequest)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	updatedUser, err := s.repo.UpdateBalance(ctx, id, user.Balance.Add(parsed))
	if err != nil {
		s.logger.Error("failed to update balance", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("balance topped up", slog.String("user_id", id))
	s.auditLogger.LogBalanceChange(id, parsed.String(), updatedUser.Balance.String())
	return updatedUser, nil
}

// ChangePassword verifies the current password before storing a hash
// of the new one.
func (s *UserService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		s.auditLogger.LogPasswordChange(id, false)
		return models.ErrUnauthorized
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePasswordHash(ctx, id, hashedPassword); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password changed", slog.String("user_id", id))
	s.auditLogger.LogPasswordChange(id, true)
	return nil
}

// UpdateUser updates an existing user's profile fields
func (s *UserService) UpdateUser(ctx context.Context, id string, user *models.User) (*models.User, error) {
	existingUser, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if user.Name != "" {
		existingUser.Name = user.Name
	}
	if user.Phone != "" {
		existingUser.Phone = user.Phone
	}

	updatedUser, err := s.repo.Update(ctx, id, existingUser)
	if err != nil {
		s.logger.Error("failed to update user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user updated", slog.String("user_id", id))
	return updatedUser, nil
}

// DeleteUser deletes a user
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id))
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user deleted", slog.String("user_id", id))
	s.auditLogger.LogAccountAction("account_deleted", id)
	return nil
}

// generateAccountNumber produces a random 10-digit account number and
// retries on the unlikely collision with an existing account.
func (s *UserService) generateAccountNumber(ctx context.Context) (string, error) {
	const maxAttempts = 5

	for i := 0; i < maxAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(9_000_000_000))
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%d", n.Int64()+1_000_000_000)

		_, err = s.repo.GetByAccountNumber(ctx, candidate)
		if errors.Is(err, models.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		// collision, try again
	}

	return "", fmt.Errorf("exhausted account number attempts")
}
