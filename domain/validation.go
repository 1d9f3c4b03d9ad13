package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const DateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("lnglat", validateLngLat)
	_ = v.RegisterValidation("date", validateDate)
	_ = v.RegisterValidation("stayduration", validateStayDuration)
	return v
}

// ValidationError describes the first rule a request failed.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", e.Field)
	case "oneof", "stayduration":
		return fmt.Sprintf("%s has an unsupported value", e.Field)
	case "lnglat":
		return fmt.Sprintf("%s must be [longitude, latitude]", e.Field)
	case "date":
		return fmt.Sprintf("%s must be a date", e.Field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", e.Field, e.Rule)
	}
}

// Validate checks a request struct against its validate tags.
func Validate(request interface{}) error {
	err := validate.Struct(request)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fieldError := fieldErrors[0]
		return &ValidationError{Field: fieldPath(fieldError.Namespace()), Rule: fieldError.Tag()}
	}
	return err
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// ParseDate accepts RFC 3339 timestamps and plain calendar dates.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}

func validateLngLat(fl validator.FieldLevel) bool {
	coordinates, ok := fl.Field().Interface().([]float64)
	if !ok || len(coordinates) != 2 {
		return false
	}
	lng, lat := coordinates[0], coordinates[1]
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

func validateStayDuration(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, duration := range StayDurations {
		if value == duration {
			return true
		}
	}
	return false
}
