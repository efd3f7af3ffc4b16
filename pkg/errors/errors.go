package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to callers of the booking engine
const (
	CodeValidation     = "VALIDATION"
	CodeForbidden      = "FORBIDDEN"
	CodeInvalidState   = "INVALID_STATE"
	CodeWindowClosed   = "WINDOW_CLOSED"
	CodeOverbooked     = "OVERBOOKED"
	CodeNoSeats        = "NO_SEATS"
	CodeRatingRequired = "RATING_REQUIRED"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInternal       = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Status  int         `json:"-"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError carrying the same code, so that
// errors.Is(err, ErrOverbooked) holds for any overbooked error regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of the error carrying a details payload
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// NewAppError creates a new AppError
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Validation creates a 400 error for malformed input
func Validation(message string, err error) *AppError {
	return NewAppError(CodeValidation, message, http.StatusBadRequest, err)
}

// Unauthorized creates a 401 error
func Unauthorized(message string, err error) *AppError {
	return NewAppError(CodeUnauthorized, message, http.StatusUnauthorized, err)
}

// Forbidden creates a 403 error for role or ownership mismatches
func Forbidden(message string, err error) *AppError {
	return NewAppError(CodeForbidden, message, http.StatusForbidden, err)
}

// NotFound creates a 404 error
func NotFound(message string, err error) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound, err)
}

// InvalidState creates a 409 error for a transition from a wrong or terminal status
func InvalidState(message string, err error) *AppError {
	return NewAppError(CodeInvalidState, message, http.StatusConflict, err)
}

// WindowClosed creates a 409 error for a time-window rule that is not satisfied
func WindowClosed(message string, err error) *AppError {
	return NewAppError(CodeWindowClosed, message, http.StatusConflict, err)
}

// Overbooked creates a 409 error for a lost capacity race
func Overbooked(message string, err error) *AppError {
	return NewAppError(CodeOverbooked, message, http.StatusConflict, err)
}

// NoSeats creates a 409 error for a ride without free seats
func NoSeats(message string, err error) *AppError {
	return NewAppError(CodeNoSeats, message, http.StatusConflict, err)
}

// RatingRequired creates a 403 error for the mandatory rating gate
func RatingRequired(message string, details interface{}) *AppError {
	e := NewAppError(CodeRatingRequired, message, http.StatusForbidden, nil)
	e.Details = details
	return e
}

// Internal creates a 500 error
func Internal(message string, err error) *AppError {
	return NewAppError(CodeInternal, message, http.StatusInternalServerError, err)
}

// Domain-specific errors

var (
	ErrRideNotFound        = NotFound("Ride not found", nil)
	ErrReservationNotFound = NotFound("Reservation not found", nil)
	ErrCarNotFound         = NotFound("Car not found", nil)

	ErrNotRideDriver        = Forbidden("Only the ride's driver may do this", nil)
	ErrNotPassenger         = Forbidden("Only the reservation's passenger may do this", nil)
	ErrOwnRide              = Forbidden("Driver cannot reserve a seat on their own ride", nil)
	ErrRideNotActive        = InvalidState("Ride is no longer active", nil)
	ErrReservationProcessed = InvalidState("Reservation has already been processed", nil)
	ErrNotAccepted          = InvalidState("Reservation is not accepted", nil)
	ErrAlreadyReserved      = InvalidState("Passenger already holds an active reservation on this ride", nil)
	ErrStaleStatus          = InvalidState("Reservation status changed concurrently", nil)
	ErrDeparted             = WindowClosed("Ride has already departed", nil)
	ErrKickWindowClosed     = WindowClosed("Passengers cannot be removed this close to departure", nil)
	ErrOverbooked           = Overbooked("Ride capacity is exhausted; re-read availability before retrying", nil)
	ErrNoSeats              = NoSeats("Ride has no free seats", nil)
	ErrRatingRequired       = RatingRequired("Pending ratings must be submitted first", nil)

	ErrSeatsBelowAccepted = Validation("Seat count cannot be lower than accepted passengers", nil)
	ErrUnauthenticated    = Unauthorized("Authentication required", nil)
)

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError attempts to convert an error to AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	// Return generic internal error if not an AppError
	return Internal("An unexpected error occurred", err)
}

// CodeOf returns the taxonomy code of err, or CodeInternal for foreign errors
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return GetAppError(err).Code
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
