package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledWithoutLicense(t *testing.T) {
	app, err := New(Config{AppName: "carpool", Enabled: true})
	require.NoError(t, err)

	assert.False(t, app.IsEnabled())
	assert.Nil(t, app.StartTransaction("booking"))
}

func TestDisabled_RecordersAreNoops(t *testing.T) {
	app := Disabled()

	assert.NotPanics(t, func() {
		app.RecordCustomEvent("BookingEvent", map[string]interface{}{"ride_id": "r1"})
		app.RecordRidesCompleted(2)
		app.RecordDatabasePoolStats(map[string]interface{}{"open_connections": 4})
		app.Shutdown(time.Second)
	})
}
