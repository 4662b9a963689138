package model

import (
	"context"
	"testing"
	"time"

	"GrainHero/internal/modules/risk/domain/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func score(t *testing.T, in scoring.Input) scoring.Result {
	t.Helper()
	res, err := NewThresholdModel().Score(context.Background(), in)
	require.NoError(t, err)
	return res
}

func TestRiceHumidAndCo2IsCritical(t *testing.T) {
	res := score(t, scoring.Input{
		GrainType: "Rice",
		Humidity:  f(85),
		Co2:       f(1200),
		Elapsed:   30 * 24 * time.Hour,
	})
	assert.InDelta(t, 90, res.Score, 0.001)
	level, label := scoring.Classify(res.Score)
	assert.Equal(t, scoring.LevelCritical, level)
	assert.Equal(t, scoring.LabelSpoiled, label)
	assert.Equal(t, []string{FactorHighHumidity, FactorElevatedCo2}, res.Factors)
	assert.Equal(t, certaintyColdStart, res.Certainty)
}

func TestSafeBandScoresZero(t *testing.T) {
	res := score(t, scoring.Input{
		GrainType:   "Wheat",
		Humidity:    f(60),
		Co2:         f(500),
		Temperature: f(20),
		Elapsed:     10 * 24 * time.Hour,
	})
	assert.Equal(t, 0.0, res.Score)
	assert.Empty(t, res.Factors)
}

func TestMonotonicInHumidityCo2AndElapsed(t *testing.T) {
	history := []scoring.Point{{Humidity: f(70), Co2: f(700)}, {Humidity: f(68), Co2: f(650)}}
	prev := -1.0
	for h := 50.0; h <= 100; h += 2.5 {
		res := score(t, scoring.Input{GrainType: "rice", Humidity: f(h), Co2: f(700), History: history})
		assert.GreaterOrEqual(t, res.Score, prev, "humidity %v", h)
		prev = res.Score
	}

	prev = -1.0
	for c := 0.0; c <= 5000; c += 150 {
		res := score(t, scoring.Input{GrainType: "maize", Humidity: f(60), Co2: f(c), History: history})
		assert.GreaterOrEqual(t, res.Score, prev, "co2 %v", c)
		prev = res.Score
	}

	prev = -1.0
	for d := 0; d <= 600; d += 20 {
		res := score(t, scoring.Input{GrainType: "barley", Elapsed: time.Duration(d) * 24 * time.Hour})
		assert.GreaterOrEqual(t, res.Score, prev, "days %v", d)
		prev = res.Score
	}
}

func TestCapsAndClamp(t *testing.T) {
	res := score(t, scoring.Input{
		GrainType:   "rice",
		Humidity:    f(100),
		Co2:         f(50000),
		Temperature: f(120),
		Elapsed:     5000 * 24 * time.Hour,
	})
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, FactorHighHumidity, res.Factors[0])
}

func TestOverdueStorage(t *testing.T) {
	res := score(t, scoring.Input{GrainType: "rice", Elapsed: 220 * 24 * time.Hour})
	assert.InDelta(t, 10, res.Score, 0.001)
	assert.Equal(t, []string{FactorStorageOverdue}, res.Factors)
}

func TestRisingTrend(t *testing.T) {
	history := []scoring.Point{{Humidity: f(62)}, {Humidity: f(60)}}
	res := score(t, scoring.Input{GrainType: "rice", Humidity: f(64), History: history})
	assert.Equal(t, trendBonus, res.Score)
	assert.Equal(t, []string{FactorRisingTrend}, res.Factors)
	assert.Equal(t, certaintyWithHistory, res.Certainty)

	flat := score(t, scoring.Input{GrainType: "rice", Humidity: f(62), History: history})
	assert.Equal(t, 0.0, flat.Score)
}

func TestUnknownGrainUsesWheat(t *testing.T) {
	assert.Equal(t, "Wheat", ProfileFor("quinoa").Name)
	assert.Equal(t, "Maize", ProfileFor(" Corn ").Name)
	assert.Equal(t, "Rice", ProfileFor("RICE").Name)
}
