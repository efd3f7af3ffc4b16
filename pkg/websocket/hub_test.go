package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func registered(t *testing.T, hub *Hub, userID string) *Client {
	t.Helper()
	c := NewClient(hub, nil, userID, nil)
	hub.Register(c)
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return hub.clients[c]
	}, time.Second, 5*time.Millisecond)
	return c
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return Message{}
	}
}

func TestPushToUser(t *testing.T) {
	hub := startHub(t)
	alice := registered(t, hub, "alice")
	aliceTablet := registered(t, hub, "alice")
	bob := registered(t, hub, "bob")

	n := hub.PushToUser("alice", "reservation.accepted", map[string]string{"ride_id": "r1"})

	assert.Equal(t, 2, n)
	assert.Equal(t, "reservation.accepted", receive(t, alice).Type)
	assert.Equal(t, "reservation.accepted", receive(t, aliceTablet).Type)
	assert.Empty(t, bob.Send)
}

func TestPushToRide_OnlySubscribers(t *testing.T) {
	hub := startHub(t)
	rideID := uuid.NewString()
	watcher := registered(t, hub, "carol")
	other := registered(t, hub, "dave")

	watcher.handleMessage([]byte(`{"type":"subscribe","ride_id":"` + rideID + `"}`))

	assert.Equal(t, 1, hub.PushToRide(rideID, "ride.cancelled", nil))
	assert.Equal(t, "ride.cancelled", receive(t, watcher).Type)
	assert.Empty(t, other.Send)

	watcher.handleMessage([]byte(`{"type":"unsubscribe","ride_id":"` + rideID + `"}`))
	assert.Zero(t, hub.PushToRide(rideID, "ride.cancelled", nil))
}

func TestHandleMessage_RejectsBadRideID(t *testing.T) {
	c := NewClient(NewHub(nil), nil, "erin", nil)

	c.handleMessage([]byte(`{"type":"subscribe","ride_id":"not-a-uuid"}`))

	assert.False(t, c.IsSubscribedToRide("not-a-uuid"))
	assert.Equal(t, "error", receive(t, c).Type)
}

func TestHandleMessage_Ping(t *testing.T) {
	c := NewClient(NewHub(nil), nil, "erin", nil)

	c.handleMessage([]byte(`{"type":"ping"}`))

	assert.Equal(t, "pong", receive(t, c).Type)
}

func TestUnregister_ClosesSend(t *testing.T) {
	hub := startHub(t)
	c := registered(t, hub, "frank")

	hub.Unregister(c)

	require.Eventually(t, func() bool { return hub.GetActiveConnections() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}
