package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/ticketdesk/complain-service/pkg/util/errorutil"
)

// Validator checks request payloads against their `validate` tags and
// reports failures keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates payload, returning a ValidationError on failure.
func (v *Validator) Struct(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInternalError(err)
	}

	fields := make(map[string][]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = append(fields[fe.Field()], message(fe))
	}
	return apperrors.NewValidationError("Validation error", fields)
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "eqfield":
		return fmt.Sprintf("The %s field must match %s.", field, strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
