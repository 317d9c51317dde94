package mqtt

import "time"

// Client represents an MQTT client capable of publishing schedule plans and
// per-device commands to microgrid field controllers.
type Client interface {
	// PublishPlan publishes the serialized plan for the given microgrid as a
	// retained message so late-joining controllers receive the current plan.
	PublishPlan(microgridID string, payload []byte) error

	// SendCommand sends a power setpoint to one device and returns the
	// command identifier used to track the acknowledgment.
	SendCommand(microgridID, deviceID string, powerKW float64, startTime time.Time) (commandID string, err error)

	// WaitForAck waits for an acknowledgment for the provided command
	// identifier or until the timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
}
