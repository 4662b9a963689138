package scoring

import (
	"context"
	"math"
	"time"
)

const (
	FactorNoSensorData = "no_sensor_data"
	ChannelTemperature = "temperature"
	ChannelHumidity    = "humidity"
	ChannelCo2         = "co2"
)

// StaleFactor names the factor recorded for a stale channel.
func StaleFactor(channel string) string {
	return "stale_" + channel + "_sensor"
}

// Reading is one snapshot channel as stored on the silo.
type Reading struct {
	Value *float64
	At    *time.Time
}

// Conditions is the snapshot handed to Evaluate.
type Conditions struct {
	Temperature Reading
	Humidity    Reading
	Co2         Reading
}

// Outcome is a fully classified assessment ready to persist.
type Outcome struct {
	Score      float64
	Level      string
	Label      string
	Confidence float64
	Factors    []string
	Stale      []string
	// NoData is set when no channel was fresh; Score then reflects storage
	// time only.
	NoData bool
	Input  Input
}

// Evaluate filters stale channels, runs the scorer and classifies the result.
// With no fresh channel the outcome still carries a score but confidence 0.
func Evaluate(ctx context.Context, scorer Scorer, cond Conditions, grainType string, elapsed time.Duration, history []Point, now time.Time, staleness time.Duration) (Outcome, error) {
	in := Input{GrainType: grainType, Elapsed: elapsed, History: history}
	var stale []string
	fresh := 0

	pick := func(name string, r Reading) *float64 {
		if r.Value == nil || r.At == nil {
			return nil
		}
		if now.Sub(*r.At) > staleness {
			stale = append(stale, name)
			return nil
		}
		fresh++
		v := *r.Value
		return &v
	}
	in.Temperature = pick(ChannelTemperature, cond.Temperature)
	in.Humidity = pick(ChannelHumidity, cond.Humidity)
	in.Co2 = pick(ChannelCo2, cond.Co2)

	res, err := scorer.Score(ctx, in)
	if err != nil {
		return Outcome{}, err
	}

	score := clamp(res.Score, 0, 100)
	score = math.Round(score*100) / 100
	level, label := Classify(score)
	completeness := float64(fresh) / 3.0
	confidence := math.Round(completeness*clamp(res.Certainty, 0, 1)*1000) / 1000

	factors := make([]string, 0, len(res.Factors)+len(stale)+1)
	if fresh == 0 {
		factors = append(factors, FactorNoSensorData)
		confidence = 0
	}
	factors = append(factors, res.Factors...)
	for _, ch := range stale {
		factors = append(factors, StaleFactor(ch))
	}

	return Outcome{
		Score:      score,
		Level:      level,
		Label:      label,
		Confidence: confidence,
		Factors:    factors,
		Stale:      stale,
		NoData:     fresh == 0,
		Input:      in,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
