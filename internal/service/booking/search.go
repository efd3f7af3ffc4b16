package booking

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gocomet/carpool/internal/domain/ride"
	apperrors "github.com/gocomet/carpool/pkg/errors"
)

// DateLayout is the accepted search date format
const DateLayout = "2006-01-02"

// SearchQuery filters active future rides. Empty origin or destination
// matches any ride; Date, when set, selects the UTC day of departure.
type SearchQuery struct {
	Origin      string
	Destination string
	Date        *time.Time
	SeatsNeeded int
}

// SearchResult is a matching ride. FullMatch is set when both origin and
// destination matched.
type SearchResult struct {
	RideSummary
	FullMatch bool `json:"full_match"`
}

// SearchRides returns full matches first, then partial ones, each ordered
// by departure
func (s *Service) SearchRides(ctx context.Context, q SearchQuery) (_ []SearchResult, err error) {
	defer func() { s.observe("search_rides", err) }()

	if q.SeatsNeeded == 0 {
		q.SeatsNeeded = 1
	}
	if q.SeatsNeeded < 1 || q.SeatsNeeded > ride.MaxSeats {
		return nil, ErrInvalidSeatsNeeded
	}
	origin := strings.ToLower(strings.TrimSpace(q.Origin))
	destination := strings.ToLower(strings.TrimSpace(q.Destination))

	active, err := s.rides.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var full, partial []SearchResult
	for _, r := range active {
		if !r.DepartureTime.After(now) {
			continue
		}
		if q.Date != nil && !sameDay(r.DepartureTime, *q.Date) {
			continue
		}

		fromOK := origin == "" || matchesPlace(r, r.Origin, origin)
		toOK := destination == "" || matchesPlace(r, r.Destination, destination)
		if !fromOK && !toOK {
			continue
		}

		seats, err := s.accountant.AvailableSeats(ctx, r)
		if err != nil {
			return nil, err
		}
		if seats < q.SeatsNeeded {
			continue
		}

		result := SearchResult{RideSummary: RideSummary{Ride: r, AvailableSeats: seats}, FullMatch: fromOK && toOK}
		if result.FullMatch {
			full = append(full, result)
		} else {
			partial = append(partial, result)
		}
	}

	byDeparture(full)
	byDeparture(partial)
	results := make([]SearchResult, 0, len(full)+len(partial))
	results = append(results, full...)
	return append(results, partial...), nil
}

// ParseDate parses a YYYY-MM-DD search date
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, apperrors.Validation("date must be formatted as YYYY-MM-DD", err)
	}
	return &d, nil
}

// matchesPlace checks the endpoint and every stop for a case-insensitive substring
func matchesPlace(r *ride.Ride, endpoint, needle string) bool {
	if strings.Contains(strings.ToLower(endpoint), needle) {
		return true
	}
	for _, stop := range r.Stops {
		if strings.Contains(strings.ToLower(stop), needle) {
			return true
		}
	}
	return false
}

func sameDay(t, day time.Time) bool {
	ty, tm, td := t.UTC().Date()
	dy, dm, dd := day.UTC().Date()
	return ty == dy && tm == dm && td == dd
}

func byDeparture(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Ride.DepartureTime.Before(results[j].Ride.DepartureTime)
	})
}
