package completion

import (
	"context"
	"time"

	"github.com/gocomet/carpool/internal/domain/ride"
	"github.com/gocomet/carpool/internal/observability"
	apperrors "github.com/gocomet/carpool/pkg/errors"
	"github.com/gocomet/carpool/pkg/logger"
)

// Sweeper marks active rides completed once their arrival time has passed.
// Completion creates the rating obligations read by the rating gate.
type Sweeper struct {
	rides    ride.Repository
	reporter Reporter
	interval time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

// Reporter receives the number of rides completed by each sweep that
// changed anything
type Reporter interface {
	RecordRidesCompleted(count int)
}

// NewSweeper creates a completion sweeper
func NewSweeper(rides ride.Repository, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Sweeper{rides: rides, interval: interval, logger: log, now: time.Now}
}

// WithClock overrides the time source
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// WithReporter attaches an APM reporter
func (s *Sweeper) WithReporter(r Reporter) *Sweeper {
	s.reporter = r
	return s
}

// Run sweeps on every tick until ctx is done
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Completion sweeper started", logger.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Completion sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.Error("Completion sweep failed", logger.Err(err))
			}
			if n > 0 && s.reporter != nil {
				s.reporter.RecordRidesCompleted(n)
			}
		}
	}
}

// SweepOnce completes every arrived ride and returns how many were changed
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	active, err := s.rides.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	completed := 0
	for _, r := range active {
		if !r.HasArrived(now) {
			continue
		}
		err := s.rides.UpdateStatus(ctx, r.ID, ride.StatusActive, ride.StatusCompleted)
		if err == apperrors.ErrRideNotActive {
			// cancelled since the listing
			continue
		}
		if err != nil {
			return completed, err
		}
		completed++
		observability.RidesCompletedTotal.Inc()
		s.logger.Info("Ride completed", logger.ID("ride_id", r.ID))
	}
	return completed, nil
}
