package completion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocomet/carpool/internal/domain/ride"
	"github.com/gocomet/carpool/internal/storage/memory"
)

func TestSweepOnce_CompletesArrivedRides(t *testing.T) {
	ctx := context.Background()
	rides := memory.NewDB().Rides()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	arrived := &ride.Ride{ID: uuid.New(), DepartureTime: now.Add(-3 * time.Hour), ArrivalTime: now.Add(-time.Hour), TotalSeats: 2, Status: ride.StatusActive}
	onTheRoad := &ride.Ride{ID: uuid.New(), DepartureTime: now.Add(-time.Hour), ArrivalTime: now.Add(time.Hour), TotalSeats: 2, Status: ride.StatusActive}
	cancelled := &ride.Ride{ID: uuid.New(), DepartureTime: now.Add(-3 * time.Hour), ArrivalTime: now.Add(-time.Hour), TotalSeats: 2, Status: ride.StatusCancelled}
	for _, r := range []*ride.Ride{arrived, onTheRoad, cancelled} {
		require.NoError(t, rides.Create(ctx, r))
	}

	s := NewSweeper(rides, time.Minute, nil).WithClock(func() time.Time { return now })
	n, err := s.SweepOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := rides.GetByID(ctx, arrived.ID)
	assert.Equal(t, ride.StatusCompleted, got.Status)
	got, _ = rides.GetByID(ctx, onTheRoad.ID)
	assert.Equal(t, ride.StatusActive, got.Status)
	got, _ = rides.GetByID(ctx, cancelled.ID)
	assert.Equal(t, ride.StatusCancelled, got.Status)

	n, err = s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := NewSweeper(memory.NewDB().Rides(), 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

type countingReporter struct {
	counts chan int
}

func (r *countingReporter) RecordRidesCompleted(count int) { r.counts <- count }

func TestRun_ReportsCompletedRides(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rides := memory.NewDB().Rides()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, rides.Create(ctx, &ride.Ride{ID: uuid.New(), DepartureTime: now.Add(-2 * time.Hour), ArrivalTime: now.Add(-time.Hour), TotalSeats: 1, Status: ride.StatusActive}))

	reporter := &countingReporter{counts: make(chan int, 4)}
	s := NewSweeper(rides, 10*time.Millisecond, nil).
		WithClock(func() time.Time { return now }).
		WithReporter(reporter)
	go s.Run(ctx)

	select {
	case n := <-reporter.counts:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("sweep did not report")
	}
}
