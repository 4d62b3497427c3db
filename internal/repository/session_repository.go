package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	"github.com/noah-isme/kbm-attendance-api/pkg/database"
)

const sessionColumns = `id, session_date, day, teacher_name, user_id, material, notes, created_at, updated_at`

const attendanceRecordSelect = `SELECT a.id, a.student_id, a.session_id, a.status, a.created_at,
        s.full_name AS student_name, cs.session_date, cs.day AS session_day, cs.material
        FROM attendances a
        JOIN class_sessions cs ON cs.id = a.session_id
        JOIN students s ON s.id = a.student_id`

// SessionRepository persists class sessions (KBM reports) together with their attendance rows.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateWithAttendances inserts the session and every attendance row in a single transaction.
func (r *SessionRepository) CreateWithAttendances(ctx context.Context, session *models.ClassSession, attendances []models.Attendance) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	for i := range attendances {
		if attendances[i].ID == "" {
			attendances[i].ID = uuid.NewString()
		}
		attendances[i].SessionID = session.ID
		attendances[i].CreatedAt = now
	}

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insertSession = `INSERT INTO class_sessions (id, session_date, day, teacher_name, user_id, material, notes, created_at, updated_at)
            VALUES (:id, :session_date, :day, :teacher_name, :user_id, :material, :notes, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insertSession, session); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		const insertAttendance = `INSERT INTO attendances (id, student_id, session_id, status, created_at)
            VALUES (:id, :student_id, :session_id, :status, :created_at)`
		for i := range attendances {
			if _, err := tx.NamedExecContext(ctx, insertAttendance, &attendances[i]); err != nil {
				return fmt.Errorf("insert attendance: %w", err)
			}
		}
		return nil
	})
}

// List returns every session, newest first.
func (r *SessionRepository) List(ctx context.Context) ([]models.ClassSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM class_sessions ORDER BY session_date DESC, created_at DESC`
	sessions := make([]models.ClassSession, 0)
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ListByUser returns the sessions filed by a user, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]models.ClassSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM class_sessions WHERE user_id = $1 ORDER BY session_date DESC, created_at DESC`
	sessions := make([]models.ClassSession, 0)
	if !validID(userID) {
		return sessions, nil
	}
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("list sessions by user: %w", err)
	}
	return sessions, nil
}

// FindByID fetches a session by ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM class_sessions WHERE id = $1`
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	var session models.ClassSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// Delete removes the attendance rows of a session and then the session itself in one transaction.
func (r *SessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var deleted bool
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM attendances WHERE session_id = $1`, id); err != nil {
			return fmt.Errorf("delete session attendances: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM class_sessions WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		deleted, err = rowsAffected(result)
		if err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// AttendanceBySession lists the attendance rows recorded for a session.
func (r *SessionRepository) AttendanceBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	query := attendanceRecordSelect + ` WHERE a.session_id = $1 ORDER BY s.full_name ASC`
	records := make([]models.AttendanceRecord, 0)
	if !validID(sessionID) {
		return records, nil
	}
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session attendance: %w", err)
	}
	return records, nil
}

// AttendanceByStudent lists a student's attendance rows whose session falls within the range.
func (r *SessionRepository) AttendanceByStudent(ctx context.Context, studentID string, rng models.DateRange) ([]models.AttendanceRecord, error) {
	if !validID(studentID) {
		return make([]models.AttendanceRecord, 0), nil
	}
	conditions := []string{"a.student_id = $1"}
	args := []interface{}{studentID}
	conditions, args = appendDateRange(conditions, args, rng)

	query := fmt.Sprintf("%s WHERE %s ORDER BY cs.session_date DESC, cs.created_at DESC", attendanceRecordSelect, strings.Join(conditions, " AND "))
	records := make([]models.AttendanceRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list student attendance: %w", err)
	}
	return records, nil
}

func appendDateRange(conditions []string, args []interface{}, rng models.DateRange) ([]string, []interface{}) {
	if rng.From != nil {
		conditions = append(conditions, fmt.Sprintf("cs.session_date >= $%d", len(args)+1))
		args = append(args, *rng.From)
	}
	if rng.To != nil {
		conditions = append(conditions, fmt.Sprintf("cs.session_date <= $%d", len(args)+1))
		args = append(args, *rng.To)
	}
	return conditions, args
}
