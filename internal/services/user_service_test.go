package services

import (
	"context"
	"errors"
	"testing"

	"github.com/BradenHooton/coffer/internal/models"
	"github.com/BradenHooton/coffer/internal/query"
	pkgauth "github.com/BradenHooton/coffer/pkg/auth"
	pkglogger "github.com/BradenHooton/coffer/pkg/logger"
	"github.com/BradenHooton/coffer/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(repo UserRepository) *UserService {
	logger := discardLogger()
	return NewUserService(repo, logger, pkglogger.NewAuditLogger(logger))
}

func TestCreateUser_GeneratesAccountNumberAndZeroBalance(t *testing.T) {
	var created *models.User
	repo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			created = user
			return user, nil
		},
	}
	svc := newUserService(repo)

	user := &models.User{Name: "Alice", Email: "alice@example.com", Phone: "08001111"}
	_, err := svc.CreateUser(context.Background(), user, "Sup3rSecret")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Len(t, created.AccountNumber, 10)
	assert.Equal(t, money.Amount(0), created.Balance)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "Sup3rSecret", created.PasswordHash)
}

func TestCreateUser_DuplicateEmailConflicts(t *testing.T) {
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: "existing"}, nil
		},
	}
	svc := newUserService(repo)

	_, err := svc.CreateUser(context.Background(), &models.User{Email: "alice@example.com"}, "Sup3rSecret")

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCreateUser_RejectsWeakPassword(t *testing.T) {
	svc := newUserService(&MockUserRepository{})

	_, err := svc.CreateUser(context.Background(), &models.User{Email: "alice@example.com"}, "weak")

	assert.Error(t, err)
	var verr *pkgauth.PasswordValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestQueryUsers_RunsEngineOverFullSet(t *testing.T) {
	repo := &MockUserRepository{
		FindAllFunc: func(ctx context.Context) ([]*models.User, error) {
			return []*models.User{
				{ID: "1", Name: "John", Email: "john@example.com"},
				{ID: "2", Name: "Bob", Email: "bob@example.com"},
				{ID: "3", Name: "Joan", Email: "joan@example.com"},
			}, nil
		},
	}
	svc := newUserService(repo)

	res, err := svc.QueryUsers(context.Background(), query.Request{Search: "name:Jo"})

	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
}

func TestQueryUsers_UnknownFieldSurfaces(t *testing.T) {
	repo := &MockUserRepository{
		FindAllFunc: func(ctx context.Context) ([]*models.User, error) {
			return []*models.User{{ID: "1"}}, nil
		},
	}
	svc := newUserService(repo)

	_, err := svc.QueryUsers(context.Background(), query.Request{Search: "ssn:123"})

	assert.ErrorIs(t, err, query.ErrUnknownField)
}

func TestQueryUsers_StoreFailureIsInternal(t *testing.T) {
	repo := &MockUserRepository{
		FindAllFunc: func(ctx context.Context) ([]*models.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newUserService(repo)

	_, err := svc.QueryUsers(context.Background(), query.Request{})

	assert.ErrorIs(t, err, models.ErrInternalServer)
}

func TestTopUp_AddsToBalance(t *testing.T) {
	var newBalance money.Amount
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Balance: money.MustParse("10.50")}, nil
		},
		UpdateBalanceFunc: func(ctx context.Context, id string, balance money.Amount) (*models.User, error) {
			newBalance = balance
			return &models.User{ID: id, Balance: balance}, nil
		},
	}
	svc := newUserService(repo)

	user, err := svc.TopUp(context.Background(), "user-1", "5.25")

	require.NoError(t, err)
	assert.Equal(t, money.MustParse("15.75"), newBalance)
	assert.Equal(t, "15.75", user.Balance.String())
}

func TestTopUp_RejectsMalformedAndNonPositiveAmounts(t *testing.T) {
	svc := newUserService(&MockUserRepository{})

	for _, amount := range []string{"abc", "", "1.234", "0", "0.00", "-5.00"} {
		_, err := svc.TopUp(context.Background(), "user-1", amount)
		assert.ErrorIs(t, err, models.ErrBadRequest, "amount %q", amount)
	}
}

func TestTopUp_UnknownUser(t *testing.T) {
	svc := newUserService(&MockUserRepository{})

	_, err := svc.TopUp(context.Background(), "missing", "5.00")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestChangePassword_VerifiesCurrentFirst(t *testing.T) {
	hash, err := pkgauth.HashPassword("OldSecret1")
	require.NoError(t, err)

	updated := ""
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, PasswordHash: hash}, nil
		},
		UpdatePasswordHashFunc: func(ctx context.Context, id, passwordHash string) error {
			updated = passwordHash
			return nil
		},
	}
	svc := newUserService(repo)

	err = svc.ChangePassword(context.Background(), "user-1", "wrong", "NewSecret1")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Empty(t, updated)

	err = svc.ChangePassword(context.Background(), "user-1", "OldSecret1", "NewSecret1")
	require.NoError(t, err)
	assert.NotEmpty(t, updated)
	assert.NoError(t, pkgauth.ComparePassword(updated, "NewSecret1"))
}

func TestUpdateUser_AppliesOnlyProvidedFields(t *testing.T) {
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Name: "Alice", Phone: "08001111"}, nil
		},
		UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
			return user, nil
		},
	}
	svc := newUserService(repo)

	updated, err := svc.UpdateUser(context.Background(), "user-1", &models.User{Phone: "08009999"})

	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "08009999", updated.Phone)
}

func TestDeleteUser_UnknownUser(t *testing.T) {
	svc := newUserService(&MockUserRepository{})

	err := svc.DeleteUser(context.Background(), "missing")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetUserByAccountNumber(t *testing.T) {
	repo := &MockUserRepository{
		GetByAccountNumberFunc: func(ctx context.Context, accountNumber string) (*models.User, error) {
			if accountNumber == "1234567890" {
				return &models.User{ID: "user-1", AccountNumber: accountNumber}, nil
			}
			return nil, models.ErrNotFound
		},
	}
	svc := newUserService(repo)

	user, err := svc.GetUserByAccountNumber(context.Background(), "1234567890")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	_, err = svc.GetUserByAccountNumber(context.Background(), "0000000000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
