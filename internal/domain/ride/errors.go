package ride

import apperrors "github.com/gocomet/carpool/pkg/errors"

var (
	ErrEmptyPlace         = apperrors.Validation("place name is required", nil)
	ErrPlaceTooLong       = apperrors.Validation("place name is too long", nil)
	ErrPlaceCharacters    = apperrors.Validation("place name may only contain letters, digits, spaces and hyphens", nil)
	ErrPlaceTooManyDigits = apperrors.Validation("place name contains too many digits", nil)
	ErrInvalidSeats       = apperrors.Validation("total seats out of range", nil)
	ErrInvalidPrice       = apperrors.Validation("price cannot be negative", nil)
	ErrInvalidSchedule    = apperrors.Validation("departure must be before arrival", nil)
	ErrDepartureInPast    = apperrors.Validation("departure must be in the future", nil)
	ErrTooManyStops       = apperrors.Validation("too many intermediate stops", nil)
)
