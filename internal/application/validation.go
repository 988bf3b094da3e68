package application

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/example/fitness-manager/internal/gym"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
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
		_ = v.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
			_, err := gym.ParseDate(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("datetime_local", func(fl validator.FieldLevel) bool {
			_, err := gym.ParseDateTime(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// validateStruct runs the struct tag rules and converts failures into a
// ValidationError keyed by JSON field name.
func validateStruct(value any) error {
	err := structValidator().Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	vErr := &ValidationError{}
	for _, fe := range fieldErrs {
		vErr.add(fe.Field(), fieldMessage(fe))
	}
	return vErr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "email is invalid"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "calendar_date":
		return "must be a date in YYYY-MM-DD format"
	case "datetime_local":
		return "must be a date and time such as 2025-01-01T10:00"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
