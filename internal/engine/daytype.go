package engine

import (
	"time"

	"github.com/claude/trainday/internal/models"
)

// DetermineDayType classifies the day. The first matching rule wins:
// pain, bad feeling, bad sleep, an active cooldown and a hard previous day
// all force easy; a fully green check-in is a coin flip between medium and
// hard; anything else is medium.
func DetermineDayType(q models.Questionnaire, st models.UserState, rng Rand) models.DayType {
	switch {
	case q.Pain == models.PainPresent:
		return models.DayEasy
	case q.Feeling == models.FeelingBad:
		return models.DayEasy
	case q.Sleep == models.SleepBad:
		return models.DayEasy
	case st.CooldownCounter > 0 && !st.CooldownOverride:
		return models.DayEasy
	case st.LastHardDay:
		return models.DayEasy
	case q.Feeling == models.FeelingGreat && q.Sleep == models.SleepGood && q.Pain == models.PainNone:
		if rng.IntN(2) == 0 {
			return models.DayMedium
		}
		return models.DayHard
	}
	return models.DayMedium
}

// CanUsePower reports whether power-tagged exercises may appear today.
func CanUsePower(st models.UserState, q models.Questionnaire, day models.DayType, now time.Time) bool {
	if day != models.DayHard {
		return false
	}
	if q.Pain != models.PainNone || q.Sleep != models.SleepGood || q.Feeling != models.FeelingGreat {
		return false
	}
	if st.CooldownCounter != 0 {
		return false
	}
	if st.PowerLastUsed == nil {
		return true
	}
	return ElapsedDays(*st.PowerLastUsed, now) >= st.PowerFrequency.Days()
}

// ElapsedDays returns the number of calendar days between the UTC dates of
// from and to. Time of day is ignored.
func ElapsedDays(from, to time.Time) int {
	return int(utcDate(to).Sub(utcDate(from)).Hours() / 24)
}

func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
