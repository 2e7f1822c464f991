package validator

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"skillxintell/internal/domain/skill"
	"skillxintell/internal/domain/user"
	"skillxintell/internal/domain/verification"

	"github.com/go-playground/validator/v10"
)

// ValidationError maps request field names (json tags) to messages.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f, e.Errors[f]))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "sector", func(fl validator.FieldLevel) bool {
		_, ok := skill.ParseSector(fl.Field().String())
		return ok
	})
	mustRegister(v, "self_role", func(fl validator.FieldLevel) bool {
		r, ok := user.ParseRole(fl.Field().String())
		return ok && r.SelfAssignable()
	})
	mustRegister(v, "decision", func(fl validator.FieldLevel) bool {
		s, ok := verification.ParseStatus(fl.Field().String())
		return ok && s.Terminal()
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate returns *ValidationError when i fails any rule.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		out[fe.Field()] = message(fe)
	}
	return &ValidationError{Errors: out}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must be at least %s long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must be at most %s long", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "uuid":
		return "must be a valid uuid"
	case "http_url":
		return "must be an http or https url"
	case "sector":
		return "must be one of HEALTHCARE, AGRICULTURE, URBAN"
	case "self_role":
		return "must be one of STUDENT, EMPLOYEE, EDUCATOR"
	case "decision":
		return "must be APPROVED or REJECTED"
	default:
		return fmt.Sprintf("failed on '%s'", fe.Tag())
	}
}
