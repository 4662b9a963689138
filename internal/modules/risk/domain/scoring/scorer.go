// Package scoring defines the model capability the engine scores through and
// the fixed rules around it: classification, sensor freshness, confidence.
package scoring

import (
	"context"
	"time"
)

// Point is a past assessment, most recent first in Input.History.
type Point struct {
	Score      float64
	Humidity   *float64
	Co2        *float64
	ComputedAt time.Time
}

// Input carries only fresh channels; a nil channel is missing or stale.
type Input struct {
	Temperature *float64
	Humidity    *float64
	Co2         *float64
	GrainType   string
	Elapsed     time.Duration
	History     []Point
}

// Result is the model output. Score is clamped to [0,100] by the caller,
// Certainty to [0,1]. Factors are ordered by contribution.
type Result struct {
	Score     float64
	Certainty float64
	Factors   []string
}

// Scorer is a pluggable risk model. Implementations must be monotonically
// non-decreasing in humidity and CO2 beyond the grain's safe band and in
// elapsed duration beyond its shelf constant.
type Scorer interface {
	Name() string
	Score(ctx context.Context, in Input) (Result, error)
}
