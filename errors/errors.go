package errors

import (
	stderrors "errors"
	"net/http"
)

const (
	InvalidRequestFormatError = "Invalid request format"
	InternalServerError       = "Internal server error"

	UserExists         = "User already exists"
	InvalidUserData    = "Invalid user data"
	InvalidCredentials = "Invalid email or password"
	UserNotFound       = "User not found"
	TooManyAttempts    = "Too many login attempts, try again later"

	NoTokenError      = "Not authorized, no token"
	InvalidTokenError = "Not authorized, token failed"
	NotAdminError     = "Not authorized as an admin"

	HostelNotFound        = "Hostel not found"
	HostelUpdateForbidden = "You are not authorized to update this hostel"
	HostelDeleteForbidden = "You are not authorized to delete this hostel"
	AlreadyReviewed       = "Hostel already reviewed"

	RoommateNotFound        = "Roommate profile not found"
	RoommateExists          = "You already have a roommate profile"
	RoommateUpdateForbidden = "You are not authorized to update this profile"
	RoommateDeleteForbidden = "You are not authorized to delete this profile"
)

// AppError is an error that knows which HTTP status and client facing
// message it should be reported with.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func Wrap(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

func TooManyRequests(message string) *AppError {
	return New(http.StatusTooManyRequests, message)
}

func Internal(err error) *AppError {
	return Wrap(http.StatusInternalServerError, InternalServerError, err)
}

// Status returns the HTTP status err should be reported with. Errors that
// are not an AppError anywhere in their chain are internal.
func Status(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Message returns the client facing message of err.
func Message(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return InternalServerError
}
