package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDuplicateDocumentID = errors.New("duplicate document id")
	ErrMalformedDuration   = errors.New("malformed duration")
	ErrCourseNotFound      = errors.New("course not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrCacheUnavailable    = errors.New("cache unavailable")
	ErrInternal            = errors.New("internal error")
	ErrTimeout             = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// DuplicateID reports a course id that appears more than once in a corpus.
func DuplicateID(id string, first, second int) *AppError {
	return Newf(ErrDuplicateDocumentID, http.StatusConflict,
		"id %q at positions %d and %d", id, first, second)
}

// MalformedDuration reports a duration that is not of the form H:MM.
func MalformedDuration(courseID, duration string) *AppError {
	return Newf(ErrMalformedDuration, http.StatusUnprocessableEntity,
		"course %q has duration %q, want H:MM", courseID, duration)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrCourseNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateDocumentID):
		return http.StatusConflict
	case errors.Is(err, ErrMalformedDuration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrCacheUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
