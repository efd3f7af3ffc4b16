package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/car"
	"github.com/gocomet/carpool/internal/domain/reservation"
	"github.com/gocomet/carpool/internal/domain/ride"
	"github.com/gocomet/carpool/internal/events"
	"github.com/gocomet/carpool/internal/observability"
	"github.com/gocomet/carpool/internal/service/capacity"
	"github.com/gocomet/carpool/internal/service/policy"
	apperrors "github.com/gocomet/carpool/pkg/errors"
	"github.com/gocomet/carpool/pkg/logger"
)

// Gate decides whether a user may create reservations
type Gate interface {
	Check(ctx context.Context, userID uuid.UUID) error
}

// Deps are the collaborators of the booking service
type Deps struct {
	Rides        ride.Repository
	Reservations reservation.Repository
	Cars         car.Lookup
	Accountant   *capacity.Accountant
	Evaluator    *policy.Evaluator
	Gate         Gate
	Events       events.Emitter
	Logger       *logger.Logger
	Now          func() time.Time
}

// Service runs the ride and reservation lifecycle
type Service struct {
	rides        ride.Repository
	reservations reservation.Repository
	cars         car.Lookup
	accountant   *capacity.Accountant
	evaluator    *policy.Evaluator
	gate         Gate
	events       events.Emitter
	logger       *logger.Logger
	now          func() time.Time
}

// NewService creates a new booking service
func NewService(d Deps) *Service {
	s := &Service{
		rides:        d.Rides,
		reservations: d.Reservations,
		cars:         d.Cars,
		accountant:   d.Accountant,
		evaluator:    d.Evaluator,
		gate:         d.Gate,
		events:       d.Events,
		logger:       d.Logger,
		now:          d.Now,
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	if s.accountant == nil {
		s.accountant = capacity.NewAccountant(capacity.NewLocalLocker(), d.Rides, d.Reservations, s.logger)
	}
	if s.evaluator == nil {
		s.evaluator = policy.NewEvaluator(policy.DefaultConfig())
	}
	if s.events == nil {
		s.events = events.NopEmitter{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Evaluator returns the active permission evaluator
func (s *Service) Evaluator() *policy.Evaluator {
	return s.evaluator
}

func (s *Service) input(r *ride.Ride, res *reservation.Reservation, actorID uuid.UUID, seats int) policy.Input {
	return policy.Input{
		Now:            s.now(),
		Ride:           r,
		Reservation:    res,
		ActorID:        actorID,
		AvailableSeats: seats,
	}
}

func (s *Service) emit(e events.Event) {
	s.events.Emit(e)
}

// observe counts the outcome of an operation by error code
func (s *Service) observe(op string, err error) {
	code := observability.CodeOK
	if err != nil {
		code = apperrors.CodeOf(err)
		if code == apperrors.CodeInternal {
			s.logger.Error("Booking operation failed", logger.String("operation", op), logger.Err(err))
		} else {
			s.logger.Warn("Booking operation rejected", logger.String("operation", op), logger.String("code", code))
		}
	}
	observability.BookingOperationsTotal.WithLabelValues(op, code).Inc()
}
