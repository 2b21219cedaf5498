package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/SAP-F-2025/quiz-engine/internal/errors"
	"github.com/SAP-F-2025/quiz-engine/internal/models"
)

// Validator wraps go-playground validation with the module's custom
// rules and json-tag field naming.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	RegisterCustomValidators(v)
	return &Validator{validate: v}
}

// Validate checks struct tags and converts failures to the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if converted := apperrors.ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

// Custom validation functions

func ValidateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.SingleChoice,
		models.MultipleChoice,
		models.ShortAnswer,
		models.LongText,
		models.FillBlank,
		models.TextCompletion,
		models.Matching,
		models.MediaQuestion,
		models.MediaOpenQuestion,
		models.ImageContent,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateDisplayMode(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == string(models.DisplayOneByOne) || value == string(models.DisplayAllAtOnce)
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", ValidateQuestionType)
	validate.RegisterValidation("display_mode", ValidateDisplayMode)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
