package dto

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreate() CreateRideRequest {
	carID := uuid.New()
	price := 0.0
	dep := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	return CreateRideRequest{
		CarID:         &carID,
		Origin:        "Praha",
		Destination:   "Brno",
		Stops:         []string{"Jihlava"},
		DepartureTime: dep,
		ArrivalTime:   dep.Add(2 * time.Hour),
		Price:         &price,
		TotalSeats:    3,
	}
}

func TestCreateRideRequest_Binding(t *testing.T) {
	require.NoError(t, RegisterValidators())

	tests := []struct {
		name   string
		mutate func(*CreateRideRequest)
		ok     bool
	}{
		{"valid with free price", func(*CreateRideRequest) {}, true},
		{"accented place", func(r *CreateRideRequest) { r.Origin = "Plzeň" }, true},
		{"place with punctuation", func(r *CreateRideRequest) { r.Destination = "Brno!" }, false},
		{"place too long", func(r *CreateRideRequest) { r.Origin = "Mnichovo Hradiste" }, false},
		{"bad stop", func(r *CreateRideRequest) { r.Stops = []string{"D1 km 112"} }, false},
		{"missing car", func(r *CreateRideRequest) { r.CarID = nil }, false},
		{"missing price", func(r *CreateRideRequest) { r.Price = nil }, false},
		{"arrival before departure", func(r *CreateRideRequest) { r.ArrivalTime = r.DepartureTime.Add(-time.Minute) }, false},
		{"too many seats", func(r *CreateRideRequest) { r.TotalSeats = 9 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			err := binding.Validator.ValidateStruct(req)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestEditRideRequest_OptionalFields(t *testing.T) {
	require.NoError(t, RegisterValidators())

	assert.NoError(t, binding.Validator.ValidateStruct(EditRideRequest{}))

	bad := "Brno?"
	assert.Error(t, binding.Validator.ValidateStruct(EditRideRequest{Origin: &bad}))

	seats := 0
	assert.Error(t, binding.Validator.ValidateStruct(EditRideRequest{TotalSeats: &seats}))
}

func TestSubmitRatingRequest_Binding(t *testing.T) {
	req := SubmitRatingRequest{RideID: uuid.New(), RateeID: uuid.New(), Role: "driver", Score: 5}
	assert.NoError(t, binding.Validator.ValidateStruct(req))

	req.Role = "owner"
	assert.Error(t, binding.Validator.ValidateStruct(req))

	req.Role, req.Score = "passenger", 6
	assert.Error(t, binding.Validator.ValidateStruct(req))
}
