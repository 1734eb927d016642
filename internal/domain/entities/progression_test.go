package entities

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestXPForAmount(t *testing.T) {
	assert.Equal(t, int64(250), XPForAmount(decimal.RequireFromString("250")))
	assert.Equal(t, int64(99), XPForAmount(decimal.RequireFromString("99.99")))
	assert.Equal(t, int64(0), XPForAmount(decimal.RequireFromString("0.5")))
	assert.Equal(t, int64(0), XPForAmount(decimal.Zero))
	assert.Equal(t, int64(0), XPForAmount(decimal.RequireFromString("-10")))
}

func TestLevelForXP(t *testing.T) {
	cases := map[int64]int{
		0:      0,
		99:     0,
		100:    1,
		250:    1,
		399:    1,
		400:    2,
		899:    2,
		900:    3,
		10000:  10,
		999999: 99,
	}
	for xp, want := range cases {
		assert.Equal(t, want, LevelForXP(xp), "xp=%d", xp)
	}
}

func TestLevelForXP_MatchesSquareRootCurve(t *testing.T) {
	for xp := int64(0); xp <= 50000; xp += 7 {
		want := int(math.Floor(math.Sqrt(float64(xp) / 100)))
		assert.Equal(t, want, LevelForXP(xp), "xp=%d", xp)
	}
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, 1, NextStreak(0, null.Time{}, now))
	assert.Equal(t, 3, NextStreak(3, null.TimeFrom(now.Add(-2*time.Hour)), now))
	assert.Equal(t, 1, NextStreak(0, null.TimeFrom(now.Add(-time.Hour)), now))
	assert.Equal(t, 4, NextStreak(3, null.TimeFrom(time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)), now))
	assert.Equal(t, 1, NextStreak(7, null.TimeFrom(time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC)), now))
}

func TestNextStreak_UsesUTCCalendarDays(t *testing.T) {
	lagos := time.FixedZone("WAT", 3600)
	// 00:30 local on the 10th is still the 9th in UTC
	now := time.Date(2026, 3, 10, 0, 30, 0, 0, lagos)
	last := time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 2, NextStreak(2, null.TimeFrom(last), now))
}

func TestStreakCutoff(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), StreakCutoff(now))
}
