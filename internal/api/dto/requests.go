package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/gocomet/carpool/internal/domain/rating"
	"github.com/gocomet/carpool/internal/service/booking"
	"github.com/gocomet/carpool/internal/service/feedback"
)

// CreateRideRequest represents a request to publish a ride
type CreateRideRequest struct {
	CarID         *uuid.UUID `json:"car_id" binding:"required"`
	Origin        string     `json:"origin" binding:"required,place"`
	Destination   string     `json:"destination" binding:"required,place"`
	Stops         []string   `json:"stops" binding:"omitempty,max=10,dive,place"`
	DepartureTime time.Time  `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time  `json:"arrival_time" binding:"required,gtfield=DepartureTime"`
	Price         *float64   `json:"price" binding:"required,gte=0"`
	TotalSeats    int        `json:"total_seats" binding:"required,min=1,max=8"`
}

// Input converts the request to a booking input
func (r CreateRideRequest) Input() booking.CreateRideInput {
	return booking.CreateRideInput{
		CarID:         r.CarID,
		Origin:        r.Origin,
		Destination:   r.Destination,
		Stops:         r.Stops,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
		Price:         *r.Price,
		TotalSeats:    r.TotalSeats,
	}
}

// EditRideRequest is a partial ride update; absent fields stay unchanged
type EditRideRequest struct {
	CarID         *uuid.UUID `json:"car_id"`
	Origin        *string    `json:"origin" binding:"omitempty,place"`
	Destination   *string    `json:"destination" binding:"omitempty,place"`
	Stops         *[]string  `json:"stops" binding:"omitempty,max=10,dive,place"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	Price         *float64   `json:"price" binding:"omitempty,gte=0"`
	TotalSeats    *int       `json:"total_seats" binding:"omitempty,min=1,max=8"`
}

// Input converts the request to a booking input
func (r EditRideRequest) Input() booking.EditRideInput {
	return booking.EditRideInput{
		CarID:         r.CarID,
		Origin:        r.Origin,
		Destination:   r.Destination,
		Stops:         r.Stops,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
		Price:         r.Price,
		TotalSeats:    r.TotalSeats,
	}
}

// SearchRidesQuery holds search query parameters
type SearchRidesQuery struct {
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
	Date        string `form:"date"`
	Seats       int    `form:"seats" binding:"omitempty,min=1,max=8"`
}

// CreateReservationRequest represents a seat request
type CreateReservationRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// SubmitRatingRequest represents a rating of a ride counterpart
type SubmitRatingRequest struct {
	RideID  uuid.UUID `json:"ride_id" binding:"required"`
	RateeID uuid.UUID `json:"ratee_id" binding:"required"`
	Role    string    `json:"role" binding:"required,oneof=driver passenger"`
	Score   int       `json:"score" binding:"required,min=1,max=5"`
	Comment string    `json:"comment" binding:"max=1000"`
}

// Input converts the request to a feedback input
func (r SubmitRatingRequest) Input() feedback.SubmitInput {
	return feedback.SubmitInput{
		RideID:  r.RideID,
		RateeID: r.RateeID,
		Role:    rating.Role(r.Role),
		Score:   r.Score,
		Comment: r.Comment,
	}
}
