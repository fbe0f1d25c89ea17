package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/charlesng35/classifieds/pkg/errors"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, err := range v {
		if err.Param != "" {
			parts[i] = err.Field + " failed on " + err.Tag + "=" + err.Param
		} else {
			parts[i] = err.Field + " failed on " + err.Tag
		}
	}
	return strings.Join(parts, "; ")
}

// FieldErrors renders the failures as API field errors, preserving order.
func (v ValidationErrors) FieldErrors() []appErrors.FieldError {
	out := make([]appErrors.FieldError, 0, len(v))
	for _, failure := range v {
		out = append(out, appErrors.FieldError{
			Field:   failure.Field,
			Message: describe(failure),
		})
	}
	return out
}

func describe(failure ValidationError) string {
	switch failure.Tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", failure.Param)
	case "max":
		return fmt.Sprintf("must be at most %s", failure.Param)
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", failure.Param)
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", failure.Param)
	case "uuid4", "uuid":
		return "must be a valid UUID"
	default:
		if failure.Param != "" {
			return fmt.Sprintf("failed validation: %s=%s", failure.Tag, failure.Param)
		}
		return fmt.Sprintf("failed validation: %s", failure.Tag)
	}
}

// ValidateStruct validates a struct using registered rules.
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	if ve, ok := err.(validator.ValidationErrors); ok {
		failures := make(ValidationErrors, 0, len(ve))
		for _, fe := range ve {
			failures = append(failures, ValidationError{
				Field: fe.Field(),
				Tag:   fe.Tag(),
				Param: fe.Param(),
			})
		}
		return failures
	}

	return err
}

// Var validates a single value against a tag expression such as "email".
func Var(value interface{}, tag string) bool {
	return getValidator().Var(value, tag) == nil
}

// RegisterValidation exposes underlying validator custom rules.
func RegisterValidation(tag string, fn validator.Func) error {
	return getValidator().RegisterValidation(tag, fn)
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if name == "" {
				return fld.Name
			}

			comma := strings.Index(name, ",")
			if comma != -1 {
				name = name[:comma]
			}

			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}
