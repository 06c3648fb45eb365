package domain

import (
	"math"
	"time"
)

// CallStatus tracks whether a paid call was charged.
type CallStatus string

const (
	CallStatusPending CallStatus = "pending"
	CallStatusSettled CallStatus = "settled"
)

// MaxCallDurationSeconds bounds a single settled or quoted call.
const MaxCallDurationSeconds int64 = 24 * 60 * 60

// ValidCallDuration reports whether d can be priced or settled.
func ValidCallDuration(d int64) bool {
	return d >= 0 && d <= MaxCallDurationSeconds
}

// CallSession is a paid call between a fan and a model.
type CallSession struct {
	ID              string
	FanActorID      string
	ModelActorID    string
	RatePerMinute   int64
	Status          CallStatus
	DurationSeconds int64
	Cost            int64
	SettledAt       *time.Time
}

// CallCost charges every started minute at ratePerMinute.
// Non-positive durations or rates cost nothing. A product that does not fit
// in int64 saturates at math.MaxInt64 so the charge can never wrap negative.
func CallCost(durationSeconds, ratePerMinute int64) int64 {
	if durationSeconds <= 0 || ratePerMinute <= 0 {
		return 0
	}
	minutes := durationSeconds / 60
	if durationSeconds%60 != 0 {
		minutes++
	}
	if minutes > math.MaxInt64/ratePerMinute {
		return math.MaxInt64
	}
	return minutes * ratePerMinute
}
