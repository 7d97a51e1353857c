package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/EduQuest-2025/quizplayer-service/internal/errors"
	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct-tag validation with content-level unit checks.
type Validator struct {
	structValidator *validator.Validate
	unitValidator   *UnitValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		unitValidator:   NewUnitValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if converted := apperrors.ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

// Validate performs complete validation (alias kept for service call sites)
func (v *Validator) Validate(s interface{}) error {
	return v.ValidateStruct(s)
}

// Unit returns the content-level unit validator
func (v *Validator) Unit() *UnitValidator {
	return v.unitValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("unit_variant", validateUnitVariant)
	validate.RegisterValidation("activity_status", validateActivityStatus)
	validate.RegisterValidation("page_size", validatePageSize)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateUnitVariant(fl validator.FieldLevel) bool {
	validVariants := []models.UnitVariant{
		models.VariantMCQ,
		models.VariantTrueFalse,
		models.VariantFillBlank,
		models.VariantMatchText,
		models.VariantMatchImage,
		models.VariantMatchTextImage,
		models.VariantImageMCQ,
		models.VariantDragDrop,
		models.VariantUnscramble,
	}

	value := fl.Field().String()
	for _, validVariant := range validVariants {
		if string(validVariant) == value {
			return true
		}
	}
	return false
}

func validateActivityStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.ActivityStatus{
		models.ActivityDraft,
		models.ActivityActive,
		models.ActivityArchived,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func validatePageSize(fl validator.FieldLevel) bool {
	size := fl.Field().Int()
	return size == 0 || size == 1 || size == 4
}
