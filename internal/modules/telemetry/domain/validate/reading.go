// Package validate holds the physical plausibility rules for raw readings.
package validate

import (
	"math"
	"strings"
	"time"
)

// Rejection reason codes.
const (
	ReasonUnknownSilo       = "unknown_silo"
	ReasonMissingDevice     = "missing_device"
	ReasonNoMetrics         = "no_metrics"
	ReasonTemperatureBounds = "temperature_bounds"
	ReasonHumidityBounds    = "humidity_bounds"
	ReasonCo2Bounds         = "co2_bounds"
	ReasonMissingTimestamp  = "missing_timestamp"
	ReasonFutureTimestamp   = "future_timestamp"
)

const (
	MinTemperature = -40.0
	MaxTemperature = 120.0
	MinHumidity    = 0.0
	MaxHumidity    = 100.0
	MinCo2         = 0.0
	MaxCo2         = 50000.0
)

// Raw is a reading as received from a device or bridge.
type Raw struct {
	DeviceId    string
	SiloId      string
	Temperature *float64
	Humidity    *float64
	Co2         *float64
	CapturedAt  time.Time
}

// Check returns the first rejection reason for r, or "" when r is plausible.
// Silo resolution is left to the caller.
func Check(r Raw, now time.Time, skew time.Duration) string {
	if strings.TrimSpace(r.DeviceId) == "" {
		return ReasonMissingDevice
	}
	if r.Temperature == nil && r.Humidity == nil && r.Co2 == nil {
		return ReasonNoMetrics
	}
	if !within(r.Temperature, MinTemperature, MaxTemperature) {
		return ReasonTemperatureBounds
	}
	if !within(r.Humidity, MinHumidity, MaxHumidity) {
		return ReasonHumidityBounds
	}
	if !within(r.Co2, MinCo2, MaxCo2) {
		return ReasonCo2Bounds
	}
	if r.CapturedAt.IsZero() {
		return ReasonMissingTimestamp
	}
	if r.CapturedAt.Sub(now) > skew {
		return ReasonFutureTimestamp
	}
	return ""
}

func within(v *float64, lo, hi float64) bool {
	if v == nil {
		return true
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return false
	}
	return *v >= lo && *v <= hi
}
