package errors

import (
	"errors"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// ToHTTP maps a domain error onto the client-facing status code. Unknown
// errors become a 500 with a generic message so internals never leak.
func ToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidInterval):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrCarNotFound), errors.Is(err, ErrBookingNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrCarUnavailable), errors.Is(err, ErrInvalidCarState):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrBookingConflict), errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusConflict, err.Error())
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error")
}
