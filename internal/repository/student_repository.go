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

const studentColumns = `id, full_name, birth_place, birth_date, group_name, gender, level, status, profession, skills, notes, photo_url, created_at, updated_at`

// StudentRepository manages persistence for student (generus) records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student ordered by name.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY full_name ASC, id ASC`
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ExistingIDs returns the subset of ids that belong to stored students.
func (r *StudentRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	found := make(map[string]struct{}, len(ids))
	lookup := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			lookup = append(lookup, id)
		}
	}
	if len(lookup) == 0 {
		return found, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM students WHERE id IN (?)`, lookup)
	if err != nil {
		return nil, fmt.Errorf("build student lookup: %w", err)
	}
	var rows []string
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("lookup students: %w", err)
	}
	for _, id := range rows {
		found[id] = struct{}{}
	}
	return found, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, full_name, birth_place, birth_date, group_name, gender, level, status, profession, skills, notes, photo_url, created_at, updated_at)
        VALUES (:id, :full_name, :birth_place, :birth_date, :group_name, :gender, :level, :status, :profession, :skills, :notes, :photo_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update persists every column of an existing student. Returns sql.ErrNoRows when the row is gone.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	if !validID(student.ID) {
		return sql.ErrNoRows
	}
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, birth_place = :birth_place, birth_date = :birth_date, group_name = :group_name,
        gender = :gender, level = :level, status = :status, profession = :profession, skills = :skills, notes = :notes,
        photo_url = :photo_url, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	ok, err := rowsAffected(result)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if !ok {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a student and reports whether a row was deleted.
func (r *StudentRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	deleted, err := rowsAffected(result)
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	return deleted, nil
}
