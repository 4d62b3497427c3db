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

const materialColumns = `id, title, description, file_url, file_name, created_by, created_at, updated_at`

// MaterialRepository manages shared learning materials.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository constructs a MaterialRepository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// List returns all materials, newest first.
func (r *MaterialRepository) List(ctx context.Context) ([]models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials ORDER BY created_at DESC`
	materials := make([]models.Material, 0)
	if err := r.db.SelectContext(ctx, &materials, query); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

// FindByID fetches a material by ID.
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find material: %w", err)
	}
	return &material, nil
}

// Create inserts a material.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if material.CreatedAt.IsZero() {
		material.CreatedAt = now
	}
	material.UpdatedAt = now
	const query = `INSERT INTO materials (id, title, description, file_url, file_name, created_by, created_at, updated_at)
        VALUES (:id, :title, :description, :file_url, :file_name, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// Update persists the editable columns of a material. Returns sql.ErrNoRows when the row is gone.
func (r *MaterialRepository) Update(ctx context.Context, material *models.Material) error {
	if !validID(material.ID) {
		return sql.ErrNoRows
	}
	material.UpdatedAt = time.Now().UTC()
	const query = `UPDATE materials SET title = :title, description = :description, file_url = :file_url, file_name = :file_name,
        updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, material)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	ok, err := rowsAffected(result)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	if !ok {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a material and reports whether a row was deleted.
func (r *MaterialRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete material: %w", err)
	}
	deleted, err := rowsAffected(result)
	if err != nil {
		return false, fmt.Errorf("delete material: %w", err)
	}
	return deleted, nil
}
