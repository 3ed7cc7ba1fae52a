// Package validator provides struct validation utilities with custom
// validators for the access catalog domain.
package validator

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/request"
	"github.com/erpacceso/api/pkg/domain/visibility"
)

// Validator wraps the go-playground validator with custom validations.
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range v {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return sb.String()
}

// New creates a new Validator with custom validators registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("value_kind", validateValueKind)
	_ = v.RegisterValidation("match_mode", validateMatchMode)
	_ = v.RegisterValidation("block_mode", validateBlockMode)
	_ = v.RegisterValidation("request_kind", validateRequestKind)
	_ = v.RegisterValidation("request_status", validateRequestStatus)

	return &Validator{validate: v}
}

// Validate validates a struct and returns ValidationErrors if validation
// fails.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if stderrors.As(err, &invalid) {
		return fmt.Errorf("invalid validation target: %w", err)
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "value_kind":
		return "must be one of BOOL, INT, DECIMAL, PERCENT, TEXT"
	case "match_mode":
		return "must be ANY"
	case "block_mode":
		return "must be SHOW"
	case "request_kind":
		return "must be one of ALTA, MOD, BAJA"
	case "request_status":
		return "must be one of DRAFT, SUBMITTED, APPROVED, REJECTED"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func validateValueKind(fl validator.FieldLevel) bool {
	return globalcat.ValueKind(fl.Field().String()).IsValid()
}

func validateMatchMode(fl validator.FieldLevel) bool {
	_, err := visibility.ParseMatchMode(fl.Field().String())
	return err == nil
}

func validateBlockMode(fl validator.FieldLevel) bool {
	_, err := visibility.ParseBlockMode(fl.Field().String())
	return err == nil
}

func validateRequestKind(fl validator.FieldLevel) bool {
	_, err := request.ParseKind(fl.Field().String())
	return err == nil
}

func validateRequestStatus(fl validator.FieldLevel) bool {
	_, err := request.ParseStatus(fl.Field().String())
	return err == nil
}
