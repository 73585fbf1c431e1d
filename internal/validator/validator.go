package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/campushub/lms-service/internal/models"
)

// ValidationError carries one field-level failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Validator wraps go-playground struct validation plus the domain rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// role: any tag of the six-level hierarchy.
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})

	// enrollment_role: per-section roles only.
	_ = v.RegisterValidation("enrollment_role", func(fl validator.FieldLevel) bool {
		r := models.Role(fl.Field().String())
		return r == models.RoleStudent || r == models.RoleTeacher
	})

	return &Validator{validate: v}
}

// Validate validates any struct, returning field-level errors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

// ValidateRoles checks a role set against the User invariant: non-empty,
// all tags valid, and containing the default dashboard.
func (v *Validator) ValidateRoles(roles []models.Role, defaultDashboard models.Role) error {
	var errs ValidationErrors
	if len(roles) == 0 {
		errs = append(errs, ValidationError{Field: "roles", Message: "must not be empty", Rule: "required"})
		return errs
	}
	contains := false
	for _, r := range roles {
		if !r.Valid() {
			errs = append(errs, ValidationError{Field: "roles", Message: "unknown role tag", Value: r, Rule: "role"})
		}
		if r == defaultDashboard {
			contains = true
		}
	}
	if !contains {
		errs = append(errs, ValidationError{
			Field:   "default_dashboard",
			Message: "must be one of the user's roles",
			Value:   defaultDashboard,
			Rule:    "business_logic",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateQuizPayload checks that every answer index points at an option.
func (v *Validator) ValidateQuizPayload(p models.QuizPayload) error {
	var errs ValidationErrors
	if len(p.Questions) == 0 {
		errs = append(errs, ValidationError{Field: "questions", Message: "must not be empty", Rule: "required"})
		return errs
	}
	for i, q := range p.Questions {
		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("questions[%d].text", i), Message: "is required", Rule: "required"})
		}
		if len(q.Options) < 2 {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("questions[%d].options", i), Message: "needs at least two options", Rule: "min"})
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("questions[%d].answer", i),
				Message: "must index an option",
				Value:   q.Answer,
				Rule:    "business_logic",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func toValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   fe.Field(),
				Message: messageFor(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return errs
	}
	return ValidationErrors{{Field: "request", Message: err.Error()}}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "role":
		return "must be a valid role"
	case "enrollment_role":
		return "must be STUDENT or TEACHER"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
