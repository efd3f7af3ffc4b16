package feedback

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/rating"
	apperrors "github.com/gocomet/carpool/pkg/errors"
	"github.com/gocomet/carpool/pkg/logger"
)

// Gate blocks reservation attempts while the user owes mandatory ratings
type Gate struct {
	store  rating.Store
	logger *logger.Logger
}

// NewGate creates a rating gate
func NewGate(store rating.Store, log *logger.Logger) *Gate {
	if log == nil {
		log = logger.NewNop()
	}
	return &Gate{store: store, logger: log}
}

// PendingObligations returns unresolved ratings, oldest departure first
func (g *Gate) PendingObligations(ctx context.Context, userID uuid.UUID) ([]rating.Obligation, error) {
	obligations, err := g.store.PendingObligations(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load rating obligations", err)
	}
	sort.SliceStable(obligations, func(i, j int) bool {
		a, b := obligations[i], obligations[j]
		if !a.DepartureTime.Equal(b.DepartureTime) {
			return a.DepartureTime.Before(b.DepartureTime)
		}
		if a.RideID != b.RideID {
			return a.RideID.String() < b.RideID.String()
		}
		return a.CounterpartID.String() < b.CounterpartID.String()
	})
	return obligations, nil
}

// Check fails with RATING_REQUIRED carrying the ordered obligations when
// any are pending
func (g *Gate) Check(ctx context.Context, userID uuid.UUID) error {
	obligations, err := g.PendingObligations(ctx, userID)
	if err != nil {
		return err
	}
	if len(obligations) == 0 {
		return nil
	}

	g.logger.Info("Reservation blocked by pending ratings",
		logger.ID("user_id", userID),
		logger.Int("pending", len(obligations)),
	)
	return apperrors.ErrRatingRequired.WithDetails(obligations)
}
