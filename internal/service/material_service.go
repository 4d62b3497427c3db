package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

type materialRepository interface {
	List(ctx context.Context) ([]models.Material, error)
	FindByID(ctx context.Context, id string) (*models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id string) (bool, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CreateMaterialRequest holds payload for creating materials.
type CreateMaterialRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	FileURL     *string `json:"file_url" validate:"omitempty,url"`
	FileName    *string `json:"file_name" validate:"omitempty,max=255"`
}

// UpdateMaterialRequest holds a partial update; nil fields keep their stored value.
type UpdateMaterialRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	FileURL     *string `json:"file_url" validate:"omitempty,url"`
	FileName    *string `json:"file_name" validate:"omitempty,max=255"`
}

// MaterialService manages shared learning materials.
type MaterialService struct {
	repo      materialRepository
	users     userLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMaterialService constructs a MaterialService.
func NewMaterialService(repo materialRepository, users userLookup, validate *validator.Validate, logger *zap.Logger) *MaterialService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns all materials.
func (s *MaterialService) List(ctx context.Context) ([]models.Material, error) {
	materials, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list materials")
	}
	return materials, nil
}

// Get returns a single material.
func (s *MaterialService) Get(ctx context.Context, id string) (*models.Material, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, internalError(err, "failed to load material")
	}
	return material, nil
}

// Create stores a material owned by ownerID.
func (s *MaterialService) Create(ctx context.Context, ownerID string, req CreateMaterialRequest) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid material payload")
	}
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, internalError(err, "failed to load user")
	}
	material := &models.Material{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		FileURL:     req.FileURL,
		FileName:    req.FileName,
		CreatedBy:   ownerID,
	}
	if err := s.repo.Create(ctx, material); err != nil {
		return nil, internalError(err, "failed to create material")
	}
	return material, nil
}

// Update applies the supplied fields to a stored material.
func (s *MaterialService) Update(ctx context.Context, id string, req UpdateMaterialRequest) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid material payload")
	}
	material, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		material.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		material.Description = req.Description
	}
	if req.FileURL != nil {
		material.FileURL = req.FileURL
	}
	if req.FileName != nil {
		material.FileName = req.FileName
	}
	if err := s.repo.Update(ctx, material); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, internalError(err, "failed to update material")
	}
	return material, nil
}

// Delete removes a material.
func (s *MaterialService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, internalError(err, "failed to delete material")
	}
	return deleted, nil
}
