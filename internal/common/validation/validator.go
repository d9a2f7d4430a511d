// Package validation checks request structs with go-playground/validator
// and reports failures as validation AppErrors.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"hubspot-connector/internal/common/errors"
)

// CodeInvalidRequest is the error kind of every validation failure
const CodeInvalidRequest = "invalid_request"

// CentralizedValidator provides unified validation using go-playground/validator
type CentralizedValidator struct {
	validator *validator.Validate
}

// FieldError represents a single failed rule
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// NewCentralizedValidator creates a validator with the connector's custom rules
func NewCentralizedValidator() *CentralizedValidator {
	v := validator.New()
	registerValidators(v)

	// Report the wire name of a field: form tag first, then json, then the Go name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &CentralizedValidator{validator: v}
}

// ValidateStruct validates a struct using struct tags
func (cv *CentralizedValidator) ValidateStruct(s interface{}) error {
	err := cv.validator.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors := cv.extractFieldErrors(err)
	messages := make([]string, len(fieldErrors))
	for i, e := range fieldErrors {
		messages[i] = e.Message
	}

	appErr := errors.ValidationError(strings.Join(messages, "; ")).WithCode(CodeInvalidRequest)
	appErr.Cause = err
	return appErr
}

func (cv *CentralizedValidator) extractFieldErrors(err error) []FieldError {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "unknown", Tag: "error", Message: err.Error()}}
	}

	fieldErrors := make([]FieldError, 0, len(validationErrs))
	for _, fieldError := range validationErrs {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   fieldError.Field(),
			Tag:     fieldError.Tag(),
			Param:   fieldError.Param(),
			Message: formatFieldError(fieldError),
		})
	}
	return fieldErrors
}

func formatFieldError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", err.Field())
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s characters", err.Field(), err.Param())
	case "json":
		return fmt.Sprintf("field '%s' must be valid JSON", err.Field())
	case "state_part":
		return fmt.Sprintf("field '%s' must not contain ':'", err.Field())
	default:
		return fmt.Sprintf("field '%s' failed validation: %s", err.Field(), err.Tag())
	}
}

// registerValidators adds rules specific to the connector
func registerValidators(v *validator.Validate) {
	// Ids are joined with ':' into the OAuth state and the credential key.
	_ = v.RegisterValidation("state_part", func(fl validator.FieldLevel) bool {
		return !strings.Contains(fl.Field().String(), ":")
	})
}

var globalValidator = NewCentralizedValidator()

// ValidateStruct validates a struct using the global validator instance
func ValidateStruct(s interface{}) error {
	return globalValidator.ValidateStruct(s)
}
