package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrClassNotFound    = errors.New("class not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrUserNotFound     = errors.New("user not found")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Registration errors
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidRole        = errors.New("invalid role")
)

// Enrollment errors
var (
	ErrAlreadyEnrolled = errors.New("student already enrolled in this class")
	ErrCodeNotFound    = errors.New("no class with that join code")
)

// Content errors
var (
	ErrInvalidAttachment = errors.New("invalid attachment")
)

// Store errors
var (
	ErrStoreUnavailable = errors.New("store unavailable")
)

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a new custom error for a failed field validation with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewInvalidAttachmentError creates a new custom error for a rejected attachment.
// The message must name the offending file and the violated constraint.
func NewInvalidAttachmentError(message string) error {
	return &CustomError{
		Err:     ErrInvalidAttachment,
		Message: message,
	}
}

// NewStoreUnavailableError wraps a store-level failure with an operation description
func NewStoreUnavailableError(message string, cause error) error {
	return &CustomError{
		Err:     ErrStoreUnavailable,
		Message: message,
		Cause:   cause,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Cause   error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Message extracts the user-facing message from err. A CustomError carries a
// specific message naming the violated constraint; plain sentinel errors fall
// back to their own text.
func Message(err error) string {
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.Error()
	}
	if err != nil {
		return err.Error()
	}
	return "unknown error"
}
