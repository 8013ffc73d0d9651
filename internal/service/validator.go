package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mtlprog/tasktrack/internal/domain"
)

// Validator checks request parameters against their struct tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with the task enum rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return domain.TaskStatus(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("task_priority", func(fl validator.FieldLevel) bool {
		return domain.TaskPriority(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{validate: v}
}

// Struct validates s and returns the first violation as a domain.ValidationError.
func (v *Validator) Struct(s interface{}) error {
	return toDomainError(v.validate.Struct(s))
}

// Var validates a single value under the given field name.
func (v *Validator) Var(field string, value interface{}, tag string) error {
	err := toDomainError(v.validate.Var(value, tag))
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		verr.Field = field
	}
	return err
}

func toDomainError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}

	fe := verrs[0]
	return domain.NewValidationError(fieldName(fe), reason(fe))
}

func fieldName(fe validator.FieldError) string {
	if fe.Field() == "" {
		return "value"
	}
	return toSnakeCase(fe.Field())
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "task_status":
		return "must be one of todo, in_progress, done"
	case "task_priority":
		return "must be one of low, medium, high"
	case "uuid":
		return "must be a valid UUID"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// toSnakeCase maps Go field names like DueDate or AssigneeID to due_date and assignee_id.
func toSnakeCase(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
		prevLower = !isUpper
	}
	return b.String()
}
