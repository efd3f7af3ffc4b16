package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingHandler struct {
	name string
	mu   sync.Mutex
	got  []Event
	err  error
}

func (h *collectingHandler) Name() string { return h.name }

func (h *collectingHandler) Handle(ctx context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.got = append(h.got, event)
	return h.err
}

func (h *collectingHandler) events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.got...)
}

func TestDispatcher_DeliversInOrderToAllHandlers(t *testing.T) {
	failing := &collectingHandler{name: "failing", err: errors.New("broker down")}
	ok := &collectingHandler{name: "ok"}
	d := NewDispatcher(16, time.Second, nil, failing, ok)
	d.Start()

	rideID := uuid.New()
	d.Emit(New(TypeReservationCreated, rideID, uuid.New(), time.Now()))
	d.Emit(New(TypeReservationAccepted, rideID, uuid.New(), time.Now()))
	require.NoError(t, d.Close(context.Background()))

	got := ok.events()
	require.Len(t, got, 2)
	assert.Equal(t, TypeReservationCreated, got[0].Type)
	assert.Equal(t, TypeReservationAccepted, got[1].Type)
	assert.Len(t, failing.events(), 2, "a failing handler does not stop delivery")
}

func TestDispatcher_EmitDoesNotBlockWhenFull(t *testing.T) {
	d := NewDispatcher(1, time.Second, nil)

	done := make(chan struct{})
	go func() {
		d.Emit(New(TypeRideCancelled, uuid.New(), uuid.New(), time.Now()))
		d.Emit(New(TypeRideCancelled, uuid.New(), uuid.New(), time.Now()))
		d.Emit(New(TypeRideCancelled, uuid.New(), uuid.New(), time.Now()))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full queue")
	}
}

func TestDispatcher_EmitAfterClose(t *testing.T) {
	h := &collectingHandler{name: "h"}
	d := NewDispatcher(4, time.Second, nil, h)
	d.Start()
	require.NoError(t, d.Close(context.Background()))

	d.Emit(New(TypeRideCancelled, uuid.New(), uuid.New(), time.Now()))
	assert.NoError(t, d.Close(context.Background()))
	assert.Empty(t, h.events())
}

type fakePublisher struct {
	key, value []byte
}

func (p *fakePublisher) Publish(ctx context.Context, key, value []byte) error {
	p.key, p.value = key, value
	return nil
}

func TestStreamHandler_KeysByRide(t *testing.T) {
	p := &fakePublisher{}
	event := New(TypePassengerKicked, uuid.New(), uuid.New(), time.Now()).ForReservation(uuid.New())

	require.NoError(t, NewStreamHandler(p).Handle(context.Background(), event))

	assert.Equal(t, event.RideID.String(), string(p.key))
	var decoded Event
	require.NoError(t, json.Unmarshal(p.value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, *event.ReservationID, *decoded.ReservationID)
}

type fakePusher struct {
	users []string
	rides []string
}

func (p *fakePusher) PushToUser(userID, msgType string, data interface{}) int {
	p.users = append(p.users, userID)
	return 1
}

func (p *fakePusher) PushToRide(rideID, msgType string, data interface{}) int {
	p.rides = append(p.rides, rideID)
	return 0
}

func TestPushHandler_NotifiesRecipients(t *testing.T) {
	p := &fakePusher{}
	a, b := uuid.New(), uuid.New()
	event := New(TypeRideCancelled, uuid.New(), uuid.New(), time.Now(), a, b)

	require.NoError(t, NewPushHandler(p, nil).Handle(context.Background(), event))

	assert.Equal(t, []string{a.String(), b.String()}, p.users)
	assert.Equal(t, []string{event.RideID.String()}, p.rides)
}

type fakeRecorder struct {
	eventType string
	params    map[string]interface{}
}

func (r *fakeRecorder) RecordCustomEvent(eventType string, params map[string]interface{}) {
	r.eventType, r.params = eventType, params
}

func TestAPMHandler(t *testing.T) {
	r := &fakeRecorder{}
	event := New(TypeReservationRejected, uuid.New(), uuid.New(), time.Now()).ForReservation(uuid.New())

	require.NoError(t, NewAPMHandler(r).Handle(context.Background(), event))

	assert.Equal(t, "BookingEvent", r.eventType)
	assert.Equal(t, "reservation.rejected", r.params["event_type"])
	assert.Equal(t, event.ReservationID.String(), r.params["reservation_id"])
}
