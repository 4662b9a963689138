package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		level string
		label string
	}{
		{0, LevelLow, LabelSafe},
		{39.99, LevelLow, LabelSafe},
		{40, LevelMedium, LabelRisky},
		{69.99, LevelMedium, LabelRisky},
		{70, LevelHigh, LabelSpoiled},
		{84.99, LevelHigh, LabelSpoiled},
		{85, LevelCritical, LabelSpoiled},
		{100, LevelCritical, LabelSpoiled},
	}
	for _, tc := range cases {
		level, label := Classify(tc.score)
		assert.Equal(t, tc.level, level, "score %v", tc.score)
		assert.Equal(t, tc.label, label, "score %v", tc.score)
	}
	assert.Greater(t, Rank(LevelCritical), Rank(LevelHigh))
	assert.Greater(t, Rank(LevelMedium), Rank(LevelLow))
	assert.Equal(t, 0, Rank("bogus"))
}

type fixedScorer struct {
	seen Input
	res  Result
}

func (s *fixedScorer) Name() string { return "fixed" }

func (s *fixedScorer) Score(_ context.Context, in Input) (Result, error) {
	s.seen = in
	return s.res, nil
}

func ptr(v float64) *float64 { return &v }

func TestEvaluateDropsStaleChannels(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-time.Minute)
	old := now.Add(-time.Hour)
	sc := &fixedScorer{res: Result{Score: 50, Certainty: 0.9, Factors: []string{"high_humidity"}}}

	out, err := Evaluate(context.Background(), sc, Conditions{
		Temperature: Reading{Value: ptr(30), At: &old},
		Humidity:    Reading{Value: ptr(80), At: &fresh},
		Co2:         Reading{Value: ptr(900), At: &fresh},
	}, "rice", 0, nil, now, 15*time.Minute)
	require.NoError(t, err)

	assert.Nil(t, sc.seen.Temperature)
	require.NotNil(t, sc.seen.Humidity)
	assert.Equal(t, 80.0, *sc.seen.Humidity)
	assert.Equal(t, LevelMedium, out.Level)
	assert.InDelta(t, 0.6, out.Confidence, 0.001)
	assert.Equal(t, []string{"high_humidity", "stale_temperature_sensor"}, out.Factors)
	assert.Equal(t, []string{ChannelTemperature}, out.Stale)
}

func TestEvaluateNoSensorData(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-2 * time.Hour)
	sc := &fixedScorer{res: Result{Score: 5, Certainty: 0.9}}

	out, err := Evaluate(context.Background(), sc, Conditions{
		Humidity: Reading{Value: ptr(80), At: &old},
	}, "wheat", 0, nil, now, 15*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 0.0, out.Confidence)
	assert.Equal(t, []string{FactorNoSensorData, "stale_humidity_sensor"}, out.Factors)
	assert.Equal(t, LevelLow, out.Level)
}

func TestEvaluateClampsScore(t *testing.T) {
	now := time.Now()
	sc := &fixedScorer{res: Result{Score: 140, Certainty: 2}}
	at := now
	out, err := Evaluate(context.Background(), sc, Conditions{
		Temperature: Reading{Value: ptr(20), At: &at},
		Humidity:    Reading{Value: ptr(20), At: &at},
		Co2:         Reading{Value: ptr(20), At: &at},
	}, "wheat", 0, nil, now, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 100.0, out.Score)
	assert.Equal(t, 1.0, out.Confidence)
	assert.Equal(t, LevelCritical, out.Level)
}
