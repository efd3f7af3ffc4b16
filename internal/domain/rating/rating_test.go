package rating

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRatingValidate(t *testing.T) {
	rater, ratee := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		rating  Rating
		wantErr error
	}{
		{"valid", Rating{RaterID: rater, RateeID: ratee, Role: RoleDriver, Score: 5}, nil},
		{"score too low", Rating{RaterID: rater, RateeID: ratee, Role: RoleDriver, Score: 0}, ErrInvalidScore},
		{"score too high", Rating{RaterID: rater, RateeID: ratee, Role: RoleDriver, Score: 6}, ErrInvalidScore},
		{"unknown role", Rating{RaterID: rater, RateeID: ratee, Role: "pilot", Score: 3}, ErrInvalidRole},
		{"self", Rating{RaterID: rater, RateeID: rater, Role: RolePassenger, Score: 3}, ErrSelfRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rating.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Same(t, tt.wantErr, err)
		})
	}
}
