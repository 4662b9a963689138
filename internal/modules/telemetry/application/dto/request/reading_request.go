package request

import "time"

// ReadingRequest is the wire form of a raw reading, shared by the HTTP
// endpoint and the telemetry topic.
type ReadingRequest struct {
	DeviceId    string    `json:"device_id"`
	SiloId      string    `json:"silo_id"`
	Temperature *float64  `json:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty"`
	Co2         *float64  `json:"co2,omitempty"`
	CapturedAt  time.Time `json:"captured_at"`
}

// ReadingEnvelope is the message body on the telemetry topic.
type ReadingEnvelope struct {
	TenantId string         `json:"tenant_id"`
	Reading  ReadingRequest `json:"reading"`
}
