package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageLinePass(t *testing.T) {
	message := "Agent: Acme Travel\n" +
		"Agent Email: book@acme.test\n" +
		"Agent Mobile: 5550100\n" +
		"Service: Airport Transfer\n" +
		"Date: 2026-09-01\n" +
		"Time: 14:30\n" +
		"Pickup: Changi T3\n" +
		"Drop: Marina Bay\n" +
		"Vehicle: Sedan\n" +
		"Passenger: Jo Tan"

	data := ParseMessage(message)

	require.NotEmpty(t, data)
	assert.Equal(t, "Acme Travel", data["customer_name"])
	assert.Equal(t, "book@acme.test", data["customer_email"])
	assert.Equal(t, "5550100", data["customer_mobile"])
	assert.Equal(t, "Airport Transfer", data["type_of_service"])
	assert.Equal(t, "2026-09-01", data["pickup_date"])
	assert.Equal(t, "14:30", data["pickup_time"])
	assert.Equal(t, "Changi T3", data["pickup_location"])
	assert.Equal(t, "Marina Bay", data["dropoff_location"])
	assert.Equal(t, "Sedan", data["vehicle_type"])
	assert.Equal(t, "Jo Tan", data["passenger_name"])
}

func TestParseMessageUnknownLabelPassesThrough(t *testing.T) {
	data := ParseMessage("Flight Number: SQ123")
	assert.Equal(t, "SQ123", data["flight_number"])
}

func TestParseMessageRegexFallback(t *testing.T) {
	// No colon-separated lines at all, so the line pass yields nothing and
	// the labeled patterns take over.
	data := ParseMessage("Email info@fleet.test Mobile 5550123")
	assert.Equal(t, "info@fleet.test", data["customer_email"])
	assert.Equal(t, "5550123", data["customer_mobile"])
}

func TestParseMessageEmptyInput(t *testing.T) {
	data := ParseMessage("")
	assert.Empty(t, data)
}

func TestParseMessageValueWithColon(t *testing.T) {
	// Only the first colon splits the line; the rest stays in the value.
	data := ParseMessage("Time: 14:30")
	assert.Equal(t, "14:30", data["pickup_time"])
}

func TestApplyParsed(t *testing.T) {
	var job Job
	ApplyParsed(&job, map[string]string{
		"customer_name":   "Acme Travel",
		"pickup_location": "Changi T3",
		"order_status":    "Pending",
		"flight_number":   "SQ123",
	})
	assert.Equal(t, "Acme Travel", job.CustomerName)
	assert.Equal(t, "Changi T3", job.PickupLocation)
	assert.Equal(t, "Pending", job.OrderStatus)
}
