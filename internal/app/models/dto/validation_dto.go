package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// HandleValidationError converts a gin binding error into an ErrorDetail
// naming the first offending field.
func HandleValidationError(err error) *ErrorDetail {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fieldErr := validationErrors[0]
		field := strings.ToLower(fieldErr.Field()[:1]) + fieldErr.Field()[1:]

		detail := NewErrorDetail(ErrorCodeInvalidRequest, "Invalid request payload")
		detail = detail.WithField(field)
		detail = detail.WithDetails(describeFieldError(field, fieldErr))
		return detail
	}

	detail := NewErrorDetail(ErrorCodeInvalidRequest, "Invalid request payload")
	detail = detail.WithDetails(err.Error())
	return detail
}

func describeFieldError(field string, fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fieldErr.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
