// Package model holds the built-in risk models.
package model

import (
	"context"
	"math"
	"sort"
	"time"

	"GrainHero/internal/modules/risk/domain/scoring"
)

const ThresholdModelName = "threshold-v1"

// Factor names emitted by ThresholdModel.
const (
	FactorHighHumidity    = "high_humidity"
	FactorElevatedCo2     = "elevated_co2"
	FactorHighTemperature = "high_temperature"
	FactorStorageOverdue  = "storage_overdue"
	FactorRisingTrend     = "rising_trend"
)

const (
	humidityWeight    = 3.0
	humidityCap       = 50.0
	co2Divisor        = 15.0
	co2Cap            = 40.0
	temperatureWeight = 2.0
	temperatureCap    = 20.0
	overdueWeight     = 0.25
	overdueCap        = 15.0
	trendBonus        = 5.0

	certaintyWithHistory = 0.9
	certaintyColdStart   = 0.6
)

// ThresholdModel adds capped penalties for each channel beyond the grain's
// safe band plus storage time beyond its shelf constant.
type ThresholdModel struct{}

func NewThresholdModel() *ThresholdModel {
	return &ThresholdModel{}
}

func (m *ThresholdModel) Name() string {
	return ThresholdModelName
}

type contribution struct {
	factor string
	points float64
}

func (m *ThresholdModel) Score(ctx context.Context, in scoring.Input) (scoring.Result, error) {
	if err := ctx.Err(); err != nil {
		return scoring.Result{}, err
	}
	p := ProfileFor(in.GrainType)
	var parts []contribution

	if in.Humidity != nil && *in.Humidity > p.MaxHumidity {
		parts = append(parts, contribution{FactorHighHumidity, math.Min((*in.Humidity-p.MaxHumidity)*humidityWeight, humidityCap)})
	}
	if in.Co2 != nil && *in.Co2 > p.MaxCo2 {
		parts = append(parts, contribution{FactorElevatedCo2, math.Min((*in.Co2-p.MaxCo2)/co2Divisor, co2Cap)})
	}
	if in.Temperature != nil && *in.Temperature > p.MaxTemperature {
		parts = append(parts, contribution{FactorHighTemperature, math.Min((*in.Temperature-p.MaxTemperature)*temperatureWeight, temperatureCap)})
	}
	days := in.Elapsed.Hours() / 24
	if days > p.ShelfDays {
		parts = append(parts, contribution{FactorStorageOverdue, math.Min((days-p.ShelfDays)*overdueWeight, overdueCap)})
	}
	if rising(in) {
		parts = append(parts, contribution{FactorRisingTrend, trendBonus})
	}

	sort.SliceStable(parts, func(i, j int) bool { return parts[i].points > parts[j].points })
	score := 0.0
	factors := make([]string, 0, len(parts))
	for _, c := range parts {
		score += c.points
		factors = append(factors, c.factor)
	}

	certainty := certaintyWithHistory
	if len(in.History) < 2 {
		certainty = certaintyColdStart
	}
	return scoring.Result{
		Score:     math.Min(100, math.Max(0, score)),
		Certainty: certainty,
		Factors:   factors,
	}, nil
}

// rising reports a strictly increasing humidity or CO2 series over the two
// latest assessments and the current input.
func rising(in scoring.Input) bool {
	if len(in.History) < 2 {
		return false
	}
	h0, h1 := in.History[0], in.History[1]
	return increasing(in.Humidity, h0.Humidity, h1.Humidity) || increasing(in.Co2, h0.Co2, h1.Co2)
}

func increasing(cur, prev, before *float64) bool {
	if cur == nil || prev == nil || before == nil {
		return false
	}
	return *cur > *prev && *prev > *before
}

var _ scoring.Scorer = (*ThresholdModel)(nil)

// ElapsedSince is the storage duration used as model input.
func ElapsedSince(intake, now time.Time) time.Duration {
	if now.Before(intake) {
		return 0
	}
	return now.Sub(intake)
}
