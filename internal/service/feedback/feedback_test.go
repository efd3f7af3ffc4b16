package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocomet/carpool/internal/domain/rating"
	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/domain/ride"
	"github.com/gocomet/carpool/internal/storage/memory"
	apperrors "github.com/gocomet/carpool/pkg/errors"
)

type stubStore struct {
	obligations []rating.Obligation
	err         error
}

func (s stubStore) PendingObligations(ctx context.Context, userID uuid.UUID) ([]rating.Obligation, error) {
	return s.obligations, s.err
}

func TestGate_OrdersOldestDepartureFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	newest := rating.Obligation{RideID: uuid.New(), CounterpartID: uuid.New(), DepartureTime: base.Add(48 * time.Hour)}
	oldest := rating.Obligation{RideID: uuid.New(), CounterpartID: uuid.New(), DepartureTime: base}
	middle := rating.Obligation{RideID: uuid.New(), CounterpartID: uuid.New(), DepartureTime: base.Add(24 * time.Hour)}
	gate := NewGate(stubStore{obligations: []rating.Obligation{newest, oldest, middle}}, nil)

	err := gate.Check(context.Background(), uuid.New())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrRatingRequired))
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.CodeRatingRequired, appErr.Code)
	assert.Equal(t, []rating.Obligation{oldest, middle, newest}, appErr.Details)
}

func TestGate_PassesWithoutObligations(t *testing.T) {
	gate := NewGate(stubStore{}, nil)

	assert.NoError(t, gate.Check(context.Background(), uuid.New()))
}

func TestGate_StoreFailureIsInternal(t *testing.T) {
	gate := NewGate(stubStore{err: errors.New("connection reset")}, nil)

	err := gate.Check(context.Background(), uuid.New())

	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
}

type submitFixture struct {
	db        *memory.DB
	svc       *Service
	ride      *ride.Ride
	driver    uuid.UUID
	passenger uuid.UUID
}

func newSubmitFixture(t *testing.T, status ride.Status) *submitFixture {
	t.Helper()
	ctx := context.Background()
	db := memory.NewDB()
	f := &submitFixture{db: db, driver: uuid.New(), passenger: uuid.New()}
	f.ride = &ride.Ride{
		ID:            uuid.New(),
		DriverID:      f.driver,
		Origin:        "Praha",
		Destination:   "Brno",
		DepartureTime: time.Now().Add(-4 * time.Hour),
		ArrivalTime:   time.Now().Add(-2 * time.Hour),
		TotalSeats:    2,
		Status:        status,
	}
	require.NoError(t, db.Rides().Create(ctx, f.ride))
	require.NoError(t, db.Reservations().Create(ctx, &reservation.Reservation{
		ID: uuid.New(), RideID: f.ride.ID, PassengerID: f.passenger, Status: reservation.StatusAccepted,
	}))
	f.svc = NewService(db.Ratings(), db.Rides(), db.Reservations(), nil)
	return f
}

func TestSubmit_ResolvesObligation(t *testing.T) {
	f := newSubmitFixture(t, ride.StatusCompleted)
	ctx := context.Background()
	gate := NewGate(f.db.Ratings(), nil)
	require.Error(t, gate.Check(ctx, f.passenger))

	r, err := f.svc.Submit(ctx, f.passenger, SubmitInput{RideID: f.ride.ID, RateeID: f.driver, Role: rating.RoleDriver, Score: 5, Comment: " smooth "})

	require.NoError(t, err)
	assert.Equal(t, "smooth", r.Comment)
	assert.NoError(t, gate.Check(ctx, f.passenger))
	assert.NoError(t, gate.Check(ctx, f.driver), "rating passengers is optional for drivers")
}

func TestSubmit_DriverMayRatePassenger(t *testing.T) {
	f := newSubmitFixture(t, ride.StatusCompleted)

	r, err := f.svc.Submit(context.Background(), f.driver, SubmitInput{RideID: f.ride.ID, RateeID: f.passenger, Role: rating.RolePassenger, Score: 4})

	require.NoError(t, err)
	assert.Equal(t, rating.RolePassenger, r.Role)
}

func TestSubmit_Rules(t *testing.T) {
	stranger := uuid.New()

	tests := []struct {
		name    string
		status  ride.Status
		rater   func(f *submitFixture) uuid.UUID
		input   func(f *submitFixture) SubmitInput
		wantErr error
	}{
		{
			name:   "ride not completed",
			status: ride.StatusActive,
			rater:  func(f *submitFixture) uuid.UUID { return f.passenger },
			input: func(f *submitFixture) SubmitInput {
				return SubmitInput{RideID: f.ride.ID, RateeID: f.driver, Role: rating.RoleDriver, Score: 4}
			},
			wantErr: rating.ErrRideNotComplete,
		},
		{
			name:   "stranger rates driver",
			status: ride.StatusCompleted,
			rater:  func(f *submitFixture) uuid.UUID { return stranger },
			input: func(f *submitFixture) SubmitInput {
				return SubmitInput{RideID: f.ride.ID, RateeID: f.driver, Role: rating.RoleDriver, Score: 4}
			},
			wantErr: rating.ErrNotParticipant,
		},
		{
			name:   "driver role for non driver",
			status: ride.StatusCompleted,
			rater:  func(f *submitFixture) uuid.UUID { return f.driver },
			input: func(f *submitFixture) SubmitInput {
				return SubmitInput{RideID: f.ride.ID, RateeID: f.passenger, Role: rating.RoleDriver, Score: 4}
			},
			wantErr: rating.ErrNotParticipant,
		},
		{
			name:   "driver rates stranger",
			status: ride.StatusCompleted,
			rater:  func(f *submitFixture) uuid.UUID { return f.driver },
			input: func(f *submitFixture) SubmitInput {
				return SubmitInput{RideID: f.ride.ID, RateeID: stranger, Role: rating.RolePassenger, Score: 4}
			},
			wantErr: rating.ErrNotParticipant,
		},
		{
			name:   "self rating",
			status: ride.StatusCompleted,
			rater:  func(f *submitFixture) uuid.UUID { return f.driver },
			input: func(f *submitFixture) SubmitInput {
				return SubmitInput{RideID: f.ride.ID, RateeID: f.driver, Role: rating.RoleDriver, Score: 4}
			},
			wantErr: rating.ErrSelfRating,
		},
		{
			name:   "score out of range",
			status: ride.StatusCompleted,
			rater:  func(f *submitFixture) uuid.UUID { return f.passenger },
			input: func(f *submitFixture) SubmitInput {
				return SubmitInput{RideID: f.ride.ID, RateeID: f.driver, Role: rating.RoleDriver, Score: 9}
			},
			wantErr: rating.ErrInvalidScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSubmitFixture(t, tt.status)

			_, err := f.svc.Submit(context.Background(), tt.rater(f), tt.input(f))

			assert.Same(t, tt.wantErr, err)
		})
	}
}

func TestSubmit_OnlyOnce(t *testing.T) {
	f := newSubmitFixture(t, ride.StatusCompleted)
	in := SubmitInput{RideID: f.ride.ID, RateeID: f.passenger, Role: rating.RolePassenger, Score: 3}

	_, err := f.svc.Submit(context.Background(), f.driver, in)
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), f.driver, in)

	assert.Same(t, rating.ErrAlreadyRated, err)
}
