package booking

import apperrors "github.com/gocomet/carpool/pkg/errors"

var (
	ErrCarRequired        = apperrors.Validation("car is required", nil)
	ErrCarNotOwned        = apperrors.Forbidden("car belongs to another driver", nil)
	ErrInvalidSeatsNeeded = apperrors.Validation("seats needed out of range", nil)
)
