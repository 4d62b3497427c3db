package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

// NewValidator returns a validator with the enum tags used by request payloads registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	RegisterValidations(validate)
	return validate
}

// RegisterValidations adds the domain enum tags to validate. Registering twice is harmless.
func RegisterValidations(validate *validator.Validate) {
	_ = validate.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return models.Gender(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("education_level", func(fl validator.FieldLevel) bool {
		return models.EducationLevel(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("student_status", func(fl validator.FieldLevel) bool {
		return models.StudentStatus(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDate(fl.Field().String())
		return err == nil
	})
}

func validationError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
