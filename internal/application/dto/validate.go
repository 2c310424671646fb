package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bibbank/creditrisk/internal/domain/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct tags of a request DTO and reports the first
// violation as a validation error naming the offending JSON field.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.Validation("", "%v", err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return errs.Validation(fe.Field(), "is required")
	case "gte":
		return errs.Validation(fe.Field(), "must be at least %s, got %v", fe.Param(), fe.Value())
	case "lte", "max":
		return errs.Validation(fe.Field(), "must be at most %s, got %v", fe.Param(), fe.Value())
	default:
		return errs.Validation(fe.Field(), "failed %q validation", fe.Tag())
	}
}
