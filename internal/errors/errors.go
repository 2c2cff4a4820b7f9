package errors

import "errors"

// Booking domain errors. All of them are recoverable at the API boundary;
// the handlers translate them through ToHTTP.
var (
	ErrInvalidInterval   = errors.New("end time must be after start time")
	ErrCarNotFound       = errors.New("car not found")
	ErrCarUnavailable    = errors.New("car is not available for booking")
	ErrInvalidCarState   = errors.New("car has no valid daily rate")
	ErrBookingConflict   = errors.New("car is already booked for the selected dates")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("booking status transition not allowed")
)
