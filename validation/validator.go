// Package validation wraps go-playground/validator for struct-tag based
// input validation, surfacing failures as BadRequest errors.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Yaocool/code-simplify/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// FieldError describes a validation failure for a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Prefer json tag names in error messages.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Validate validates a struct using `validate:"..."` tags. It returns a
// BadRequest error joining all field failures, or nil.
func Validate(s any) error {
	v := getValidator()
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.BadRequest("validation failed")
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, e.Field()+": "+formatValidationError(e))
	}
	return apperrors.BadRequest(strings.Join(messages, "; "))
}

// FieldErrors returns the per-field failures for a struct, or nil when valid.
func FieldErrors(s any) []FieldError {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: "validation failed"}}
	}
	out := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, FieldError{Field: e.Field(), Message: formatValidationError(e)})
	}
	return out
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + e.Tag() + " validation"
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
