package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeightTrend labels the direction of a weight-history window.
type WeightTrend string

const (
	TrendGaining     WeightTrend = "Gaining"
	TrendLosing      WeightTrend = "Losing"
	TrendMaintaining WeightTrend = "Maintaining"
)

// trendThresholdKg is the dead band around zero: deltas within it count as
// maintaining.
const trendThresholdKg = 0.5

// WeightSample is a single body-weight measurement. Samples are immutable
// once recorded.
type WeightSample struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	WeightKg   float64            `bson:"weightKg" json:"weight_kg"`
	MeasuredAt time.Time          `bson:"measuredAt" json:"measurement_date"`
}

// WeightTrendOf derives the signed weight delta, the day span it covers and a
// trend label from samples ordered ascending by date. ok is false when fewer
// than one sample is present.
func WeightTrendOf(samples []WeightSample) (deltaKg float64, days int, trend WeightTrend, ok bool) {
	if len(samples) == 0 {
		return 0, 0, "", false
	}
	first := samples[0]
	last := samples[len(samples)-1]
	deltaKg = last.WeightKg - first.WeightKg
	days = int(last.MeasuredAt.Sub(first.MeasuredAt).Hours() / 24)

	switch {
	case deltaKg > trendThresholdKg:
		trend = TrendGaining
	case deltaKg < -trendThresholdKg:
		trend = TrendLosing
	default:
		trend = TrendMaintaining
	}
	return deltaKg, days, trend, true
}

// CurrentWeight picks the most recent sample, falling back to the profile's
// target weight when no history exists. ok is false when neither is known.
func CurrentWeight(samples []WeightSample, targetWeightKg *float64) (float64, bool) {
	if len(samples) > 0 {
		return samples[len(samples)-1].WeightKg, true
	}
	if targetWeightKg != nil {
		return *targetWeightKg, true
	}
	return 0, false
}
