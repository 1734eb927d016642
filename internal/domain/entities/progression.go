package entities

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// XPPerLevelUnit is the divisor of the level curve: level = floor(sqrt(xp / 100)).
const XPPerLevelUnit = 100

// XPForAmount is the experience earned by a deposit: one point per whole dollar.
func XPForAmount(amount decimal.Decimal) int64 {
	if !amount.IsPositive() {
		return 0
	}
	return amount.Floor().IntPart()
}

// LevelForXP returns the largest level l with 100*l*l <= xp, computed on
// integers so no float rounding can move a boundary.
func LevelForXP(xp int64) int {
	if xp < XPPerLevelUnit {
		return 0
	}
	lo, hi := int64(1), int64(1)
	for hi*hi*XPPerLevelUnit <= xp {
		lo = hi
		hi *= 2
	}
	for lo+1 < hi {
		mid := lo + (hi-lo)/2
		if mid*mid*XPPerLevelUnit <= xp {
			lo = mid
		} else {
			hi = mid
		}
	}
	return int(lo)
}

// NextStreak applies the UTC calendar-day streak rule for a deposit at now.
func NextStreak(current int, lastSaved null.Time, now time.Time) int {
	if !lastSaved.Valid {
		return 1
	}
	today := StartOfDayUTC(now)
	last := StartOfDayUTC(lastSaved.Time)
	switch {
	case last.Equal(today):
		if current < 1 {
			return 1
		}
		return current
	case last.Equal(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}

// StreakCutoff is the instant before which a last deposit breaks the streak:
// midnight UTC of the day before now.
func StreakCutoff(now time.Time) time.Time {
	return StartOfDayUTC(now).AddDate(0, 0, -1)
}

// StartOfDayUTC truncates t to midnight UTC
func StartOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
