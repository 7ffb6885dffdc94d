package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	errs "github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the role tags registered and json field
// names reported in errors.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return role.Role(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("operational_role", func(fl validator.FieldLevel) bool {
			return role.Role(fl.Field().String()).IsOperational()
		})
		instance = v
	})
	return instance
}

// Struct validates s and converts failures into a validation AppError carrying one
// entry per failing field.
func Struct(s interface{}) *errs.AppError {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errs.NewValidationError(err.Error(), errs.ErrCodeValidationFailed)
	}

	details := make([]errs.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, errs.ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Code:    string(code(fe)),
		})
	}

	return errs.NewValidationError("Validation failed", errs.ErrCodeValidationFailed).
		WithDetails(errs.ValidationErrors{Errors: details})
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "role", "operational_role":
		return fmt.Sprintf("%s must be one of: %s", field, roleList(fe.Tag()))
	default:
		return field + " is invalid"
	}
}

func code(fe validator.FieldError) errs.ErrorCode {
	switch fe.Tag() {
	case "role", "operational_role":
		return errs.ErrCodeInvalidRole
	case "gt":
		return errs.ErrCodeInvalidID
	default:
		return errs.ErrCodeValidationFailed
	}
}

func roleList(tag string) string {
	roles := role.All()
	if tag == "operational_role" {
		roles = role.Operational()
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}
