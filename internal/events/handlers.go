package events

import (
	"context"
	"encoding/json"

	"github.com/gocomet/carpool/pkg/logger"
)

// Publisher writes keyed messages to a stream
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Pusher delivers realtime messages to connected users
type Pusher interface {
	PushToUser(userID string, msgType string, data interface{}) int
	PushToRide(rideID string, msgType string, data interface{}) int
}

// EventRecorder records custom analytics events
type EventRecorder interface {
	RecordCustomEvent(eventType string, params map[string]interface{})
}

// StreamHandler publishes events as JSON keyed by ride id so that a ride's
// events stay ordered within a partition
type StreamHandler struct {
	publisher Publisher
}

// NewStreamHandler creates a stream handler
func NewStreamHandler(publisher Publisher) *StreamHandler {
	return &StreamHandler{publisher: publisher}
}

func (h *StreamHandler) Name() string { return "stream" }

func (h *StreamHandler) Handle(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.publisher.Publish(ctx, []byte(event.RideID.String()), value)
}

// PushHandler notifies every recipient and the ride's subscribers
type PushHandler struct {
	pusher Pusher
	logger *logger.Logger
}

// NewPushHandler creates a realtime push handler
func NewPushHandler(pusher Pusher, log *logger.Logger) *PushHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &PushHandler{pusher: pusher, logger: log}
}

func (h *PushHandler) Name() string { return "push" }

func (h *PushHandler) Handle(ctx context.Context, event Event) error {
	delivered := 0
	for _, userID := range event.Recipients {
		delivered += h.pusher.PushToUser(userID.String(), string(event.Type), event)
	}
	delivered += h.pusher.PushToRide(event.RideID.String(), string(event.Type), event)

	h.logger.Debug("Event pushed",
		logger.String("type", string(event.Type)),
		logger.Int("recipients", len(event.Recipients)),
		logger.Int("delivered", delivered),
	)
	return nil
}

// APMHandler forwards events as custom APM events
type APMHandler struct {
	recorder EventRecorder
}

// NewAPMHandler creates an APM handler
func NewAPMHandler(recorder EventRecorder) *APMHandler {
	return &APMHandler{recorder: recorder}
}

func (h *APMHandler) Name() string { return "apm" }

func (h *APMHandler) Handle(ctx context.Context, event Event) error {
	params := map[string]interface{}{
		"event_type": string(event.Type),
		"ride_id":    event.RideID.String(),
		"actor_id":   event.ActorID.String(),
		"recipients": len(event.Recipients),
	}
	if event.ReservationID != nil {
		params["reservation_id"] = event.ReservationID.String()
	}
	h.recorder.RecordCustomEvent("BookingEvent", params)
	return nil
}
