package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Campus-Management-System/ERP-System/internal/models"
)

const userColumns = `id, name, email, password_hash, role, employee_id, student_id, department, active, last_login, created_at, updated_at`

// UserRepository manages persistence for account records.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns the account with the given email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns the account with the given identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create stores a new account. A unique violation on email surfaces as
// sql.ErrNoRows so callers can report the duplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO users (id, name, email, password_hash, role, employee_id, student_id, department, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (email) DO NOTHING
RETURNING %s`, userColumns)
	var stored models.User
	err := r.db.GetContext(ctx, &stored, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role,
		user.EmployeeID, user.StudentID, user.Department, user.Active,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &stored, nil
}

// UpdateLastLogin stamps the account's last successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := "UPDATE users SET last_login = $1, updated_at = $2 WHERE id = $3"
	if _, err := r.db.ExecContext(ctx, query, at, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdateProfile applies self-service profile edits.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, name string, department *string) (*models.User, error) {
	query := fmt.Sprintf(`UPDATE users SET name = $1, department = COALESCE($2, department), updated_at = $3
WHERE id = $4 RETURNING %s`, userColumns)
	var stored models.User
	if err := r.db.GetContext(ctx, &stored, query, name, department, time.Now().UTC(), id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return &stored, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := "UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3"
	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
