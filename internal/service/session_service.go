package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	"github.com/noah-isme/kbm-attendance-api/internal/repository"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

type sessionRepository interface {
	CreateWithAttendances(ctx context.Context, session *models.ClassSession, attendances []models.Attendance) error
	List(ctx context.Context) ([]models.ClassSession, error)
	ListByUser(ctx context.Context, userID string) ([]models.ClassSession, error)
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
	Delete(ctx context.Context, id string) (bool, error)
	AttendanceBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error)
}

type studentResolver interface {
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
}

// CreateSessionRequest is the payload of a KBM report. Day is optional and, when given, must
// match the weekday of Date.
type CreateSessionRequest struct {
	Date        string                   `json:"date" validate:"required,iso_date"`
	Day         string                   `json:"day"`
	TeacherName string                   `json:"teacher_name" validate:"required,max=255"`
	Material    string                   `json:"material" validate:"required"`
	Notes       *string                  `json:"notes"`
	Attendances []models.AttendanceEntry `json:"attendances" validate:"dive"`
}

// SessionService records class sessions and their attendance.
type SessionService struct {
	repo      sessionRepository
	students  studentResolver
	users     userLookup
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionRepository, students studentResolver, users userLookup, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, students: students, users: users, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Create files a session for ownerID together with one attendance row per entry. Either the
// session and all of its rows are stored or nothing is.
func (s *SessionService) Create(ctx context.Context, ownerID string, req CreateSessionRequest) (*models.ClassSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid session payload")
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, validationError(err, "invalid date")
	}
	day := date.DayName()
	if supplied := strings.TrimSpace(req.Day); supplied != "" && !strings.EqualFold(supplied, day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day %q does not match date %s (%s)", supplied, date, day))
	}

	ids := make([]string, 0, len(req.Attendances))
	seen := make(map[string]struct{}, len(req.Attendances))
	for _, entry := range req.Attendances {
		if _, dup := seen[entry.StudentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s listed more than once", entry.StudentID))
		}
		seen[entry.StudentID] = struct{}{}
		ids = append(ids, entry.StudentID)
	}

	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, internalError(err, "failed to load user")
	}

	existing, err := s.students.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, internalError(err, "failed to resolve students")
	}
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", id))
		}
	}

	session := &models.ClassSession{
		Date:        date,
		Day:         day,
		TeacherName: strings.TrimSpace(req.TeacherName),
		UserID:      ownerID,
		Material:    strings.TrimSpace(req.Material),
		Notes:       req.Notes,
	}
	attendances := make([]models.Attendance, len(req.Attendances))
	for i, entry := range req.Attendances {
		attendances[i] = models.Attendance{StudentID: entry.StudentID, Status: entry.Status}
	}

	if err := s.repo.CreateWithAttendances(ctx, session, attendances); err != nil {
		if repository.IsConstraintViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "session conflicts with existing records")
		}
		return nil, internalError(err, "failed to create session")
	}

	s.metrics.RecordSession(attendances)
	s.invalidateStatistics(ctx)
	s.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("user_id", ownerID),
		zap.String("date", session.Date.String()),
		zap.Int("attendances", len(attendances)),
	)
	return session, nil
}

// List returns every session.
func (s *SessionService) List(ctx context.Context) ([]models.ClassSession, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list sessions")
	}
	return sessions, nil
}

// ListByUser returns the sessions filed by userID.
func (s *SessionService) ListByUser(ctx context.Context, userID string) ([]models.ClassSession, error) {
	sessions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err, "failed to list sessions")
	}
	return sessions, nil
}

// Get returns a single session.
func (s *SessionService) Get(ctx context.Context, id string) (*models.ClassSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, internalError(err, "failed to load session")
	}
	return session, nil
}

// Attendance lists the attendance rows of a session.
func (s *SessionService) Attendance(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	records, err := s.repo.AttendanceBySession(ctx, sessionID)
	if err != nil {
		return nil, internalError(err, "failed to list attendance")
	}
	return records, nil
}

// Delete removes a session and its attendance rows.
func (s *SessionService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, internalError(err, "failed to delete session")
	}
	if deleted {
		s.invalidateStatistics(ctx)
		s.logger.Info("session deleted", zap.String("session_id", id))
	}
	return deleted, nil
}

func (s *SessionService) invalidateStatistics(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, statisticsCachePattern); err != nil {
		s.logger.Warn("statistics cache not invalidated", zap.Error(err))
	}
}
