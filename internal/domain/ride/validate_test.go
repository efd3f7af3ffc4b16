package ride

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlace(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain", "Brno", "Brno", nil},
		{"trimmed", "  Praha  ", "Praha", nil},
		{"accented", "Plzeň", "Plzeň", nil},
		{"hyphen and space", "Frýdek-Místek", "Frýdek-Místek", nil},
		{"two digits", "Praha 10", "Praha 10", nil},
		{"three digits", "Zone 123", "", ErrPlaceTooManyDigits},
		{"empty", "   ", "", ErrEmptyPlace},
		{"too long", "Ústí nad Labem XY", "", ErrPlaceTooLong},
		{"fifteen runes", "Ústí nad Labemm", "Ústí nad Labemm", nil},
		{"punctuation", "Brno!", "", ErrPlaceCharacters},
		{"underscore", "Brno_1", "", ErrPlaceCharacters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePlace(tt.input)
			if tt.wantErr != nil {
				assert.Same(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeStops_KeepsOrder(t *testing.T) {
	stops, err := NormalizeStops([]string{" Jihlava", "Humpolec "})

	require.NoError(t, err)
	assert.Equal(t, []string{"Jihlava", "Humpolec"}, stops)
}

func TestNormalizeStops_RejectsBadStop(t *testing.T) {
	_, err := NormalizeStops([]string{"Jihlava", "???"})

	assert.Same(t, ErrPlaceCharacters, err)
}

func TestRideValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	valid := func() *Ride {
		return &Ride{
			Origin:        "Praha",
			Destination:   "Brno",
			DepartureTime: now.Add(2 * time.Hour),
			ArrivalTime:   now.Add(5 * time.Hour),
			Price:         250,
			TotalSeats:    3,
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *Ride)
		wantErr error
	}{
		{"valid", func(r *Ride) {}, nil},
		{"zero seats", func(r *Ride) { r.TotalSeats = 0 }, ErrInvalidSeats},
		{"too many seats", func(r *Ride) { r.TotalSeats = MaxSeats + 1 }, ErrInvalidSeats},
		{"negative price", func(r *Ride) { r.Price = -1 }, ErrInvalidPrice},
		{"arrival before departure", func(r *Ride) { r.ArrivalTime = r.DepartureTime }, ErrInvalidSchedule},
		{"departure in past", func(r *Ride) {
			r.DepartureTime = now.Add(-time.Minute)
		}, ErrDepartureInPast},
		{"bad origin", func(r *Ride) { r.Origin = "" }, ErrEmptyPlace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			err := r.Validate(now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Same(t, tt.wantErr, err)
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	r := &Ride{Stops: []string{"Jihlava"}}
	cp := r.Clone()
	cp.Stops[0] = "Humpolec"

	assert.Equal(t, "Jihlava", r.Stops[0])
}
