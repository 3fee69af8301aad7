package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/coffer/internal/database"
	"github.com/BradenHooton/coffer/internal/models"
	"github.com/BradenHooton/coffer/pkg/money"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = "id, name, email, phone, account_number, password_hash, balance, role, created_at, updated_at"

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUserRow populates a User model from a database row. Balance is
// stored as BIGINT minor units and maps directly onto money.Amount.
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var balance int64

	err := scanner.Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone,
		&user.AccountNumber, &user.PasswordHash, &balance, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	user.Balance = money.Amount(balance)
	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// FindAll returns every user record in insertion order. The query
// engine does its own filtering, sorting, and paging over this set.
func (r *UserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE account_number = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, accountNumber))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.Role == "" {
		user.Role = "user"
	}

	query := `
		INSERT INTO users (id, name, email, phone, account_number, password_hash, balance, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.Phone,
		user.AccountNumber, user.PasswordHash, int64(user.Balance), user.Role,
		user.CreatedAt, user.UpdatedAt,
	))
}

// Update persists the mutable profile fields
func (r *UserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	query := `
		UPDATE users SET name = $1, phone = $2, updated_at = $3
		WHERE id = $4
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.Name, user.Phone, time.Now(), id,
	))
}

func (r *UserRepository) UpdateBalance(ctx context.Context, id string, balance money.Amount) (*models.User, error) {
	query := `
		UPDATE users SET balance = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query, int64(balance), time.Now(), id))
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Pool.Exec(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
