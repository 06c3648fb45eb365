package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallCost(t *testing.T) {
	cases := []struct {
		duration, rate, want int64
	}{
		{30, 10, 10},
		{60, 10, 10},
		{61, 10, 20},
		{600, 5, 50},
		{1, 7, 7},
		{0, 10, 0},
		{-5, 10, 0},
		{120, 0, 0},
		{120, -3, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CallCost(tc.duration, tc.rate), "cost(%d,%d)", tc.duration, tc.rate)
	}
}

func TestCallCostNeverWraps(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), CallCost(math.MaxInt64, 10))
	assert.Equal(t, int64(math.MaxInt64), CallCost(61, math.MaxInt64))
	assert.Equal(t, int64(153722867280912931), CallCost(math.MaxInt64, 1))
	assert.Positive(t, CallCost(MaxCallDurationSeconds, math.MaxInt64/1440))
}

func TestValidCallDuration(t *testing.T) {
	assert.True(t, ValidCallDuration(0))
	assert.True(t, ValidCallDuration(MaxCallDurationSeconds))
	assert.False(t, ValidCallDuration(MaxCallDurationSeconds+1))
	assert.False(t, ValidCallDuration(-1))
	assert.False(t, ValidCallDuration(math.MaxInt64))
}

func TestActorIs(t *testing.T) {
	a := &Actor{Type: ActorTypeBrand}
	assert.True(t, a.Is(ActorTypeFan, ActorTypeBrand))
	assert.False(t, a.Is(ActorTypeAdmin))
	assert.True(t, ActorTypeModel.Valid())
	assert.False(t, ActorType("agency").Valid())
}
