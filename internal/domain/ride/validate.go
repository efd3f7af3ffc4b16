package ride

import (
	"strings"
	"time"
	"unicode"
)

const (
	MaxPlaceLength = 15
	MaxPlaceDigits = 2
	MinSeats       = 1
	MaxSeats       = 8
	MaxStops       = 10
)

// NormalizePlace trims a place name and checks it against the naming rules:
// non-empty, at most MaxPlaceLength characters, only letters (accented
// included), digits, spaces and hyphens, and at most MaxPlaceDigits digits.
func NormalizePlace(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyPlace
	}
	if len([]rune(name)) > MaxPlaceLength {
		return "", ErrPlaceTooLong
	}

	digits := 0
	for _, r := range name {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r), r == ' ', r == '-':
		default:
			return "", ErrPlaceCharacters
		}
	}
	if digits > MaxPlaceDigits {
		return "", ErrPlaceTooManyDigits
	}
	return name, nil
}

// NormalizeStops applies NormalizePlace to every stop, keeping order
func NormalizeStops(stops []string) ([]string, error) {
	if len(stops) > MaxStops {
		return nil, ErrTooManyStops
	}
	out := make([]string, 0, len(stops))
	for _, s := range stops {
		n, err := NormalizePlace(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// ValidateSeats checks the seat count range
func ValidateSeats(total int) error {
	if total < MinSeats || total > MaxSeats {
		return ErrInvalidSeats
	}
	return nil
}

// Validate normalizes place names and checks seats, price and schedule.
// The departure must lie after now.
func (r *Ride) Validate(now time.Time) error {
	var err error
	if r.Origin, err = NormalizePlace(r.Origin); err != nil {
		return err
	}
	if r.Destination, err = NormalizePlace(r.Destination); err != nil {
		return err
	}
	if r.Stops, err = NormalizeStops(r.Stops); err != nil {
		return err
	}
	if err := ValidateSeats(r.TotalSeats); err != nil {
		return err
	}
	if r.Price < 0 {
		return ErrInvalidPrice
	}
	if !r.DepartureTime.Before(r.ArrivalTime) {
		return ErrInvalidSchedule
	}
	if !now.Before(r.DepartureTime) {
		return ErrDepartureInPast
	}
	return nil
}
