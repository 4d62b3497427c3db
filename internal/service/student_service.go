package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	"github.com/noah-isme/kbm-attendance-api/internal/repository"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	FullName   string  `json:"full_name" validate:"required,max=255"`
	BirthPlace string  `json:"birth_place" validate:"required,max=255"`
	BirthDate  string  `json:"birth_date" validate:"required,iso_date"`
	Group      string  `json:"group" validate:"required,max=255"`
	Gender     string  `json:"gender" validate:"required,gender"`
	Level      string  `json:"level" validate:"required,education_level"`
	Status     string  `json:"status" validate:"omitempty,student_status"`
	Profession *string `json:"profession"`
	Skills     *string `json:"skills"`
	Notes      *string `json:"notes"`
	PhotoURL   *string `json:"photo_url" validate:"omitempty,url"`
}

// UpdateStudentRequest holds a partial update; nil fields keep their stored value.
type UpdateStudentRequest struct {
	FullName   *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	BirthPlace *string `json:"birth_place" validate:"omitempty,min=1,max=255"`
	BirthDate  *string `json:"birth_date" validate:"omitempty,iso_date"`
	Group      *string `json:"group" validate:"omitempty,min=1,max=255"`
	Gender     *string `json:"gender" validate:"omitempty,gender"`
	Level      *string `json:"level" validate:"omitempty,education_level"`
	Status     *string `json:"status" validate:"omitempty,student_status"`
	Profession *string `json:"profession"`
	Skills     *string `json:"skills"`
	Notes      *string `json:"notes"`
	PhotoURL   *string `json:"photo_url" validate:"omitempty,url"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns every student ordered by name.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list students")
	}
	return students, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	birthDate, err := models.ParseDate(req.BirthDate)
	if err != nil {
		return nil, validationError(err, "invalid birth_date")
	}
	status := models.StudentStatus(req.Status)
	if status == "" {
		status = models.StudentStatusActive
	}
	student := &models.Student{
		FullName:   strings.TrimSpace(req.FullName),
		BirthPlace: strings.TrimSpace(req.BirthPlace),
		BirthDate:  birthDate,
		Group:      strings.TrimSpace(req.Group),
		Gender:     models.Gender(req.Gender),
		Level:      models.EducationLevel(req.Level),
		Status:     status,
		Profession: req.Profession,
		Skills:     req.Skills,
		Notes:      req.Notes,
		PhotoURL:   req.PhotoURL,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if repository.IsConstraintViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "student conflicts with an existing record")
		}
		return nil, internalError(err, "failed to create student")
	}
	return student, nil
}

// Update applies the supplied fields to a stored student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		student.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.BirthPlace != nil {
		student.BirthPlace = strings.TrimSpace(*req.BirthPlace)
	}
	if req.BirthDate != nil {
		birthDate, err := models.ParseDate(*req.BirthDate)
		if err != nil {
			return nil, validationError(err, "invalid birth_date")
		}
		student.BirthDate = birthDate
	}
	if req.Group != nil {
		student.Group = strings.TrimSpace(*req.Group)
	}
	if req.Gender != nil {
		student.Gender = models.Gender(*req.Gender)
	}
	if req.Level != nil {
		student.Level = models.EducationLevel(*req.Level)
	}
	if req.Status != nil {
		student.Status = models.StudentStatus(*req.Status)
	}
	if req.Profession != nil {
		student.Profession = req.Profession
	}
	if req.Skills != nil {
		student.Skills = req.Skills
	}
	if req.Notes != nil {
		student.Notes = req.Notes
	}
	if req.PhotoURL != nil {
		student.PhotoURL = req.PhotoURL
	}

	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to update student")
	}
	return student, nil
}

// Delete removes a student. Students with recorded attendance cannot be removed.
func (s *StudentService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		if repository.IsConstraintViolation(err) {
			return false, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "student has recorded attendance")
		}
		return false, internalError(err, "failed to delete student")
	}
	if deleted {
		s.logger.Info("student deleted", zap.String("student_id", id))
	}
	return deleted, nil
}
