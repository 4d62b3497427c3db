package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
)

const userColumns = `id, username, password_hash, role, full_name, is_active, created_at, updated_at`

// UserRepository provides database access for application accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsernameAndRole returns the account matching both username and role.
func (r *UserRepository) FindByUsernameAndRole(ctx context.Context, username string, role models.UserRole) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND role = $2 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// ExistsByUsername checks whether any account already uses the username.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM users WHERE username = $1 LIMIT 1`, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check username: %w", err)
	}
	return true, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	const query = `INSERT INTO users (id, username, password_hash, role, full_name, is_active, created_at, updated_at)
        VALUES (:id, :username, :password_hash, :role, :full_name, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
