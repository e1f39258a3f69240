package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/claude/trainday/internal/models"
)

var (
	allFeelings = []models.Feeling{models.FeelingBad, models.FeelingOK, models.FeelingGreat}
	allSleeps   = []models.Sleep{models.SleepBad, models.SleepGood}
	allPains    = []models.Pain{models.PainNone, models.PainPresent}
	allDays     = []models.DayType{models.DayEasy, models.DayMedium, models.DayHard}
)

func TestDetermineDayType_FlaggedCheckInIsAlwaysEasy(t *testing.T) {
	rng := NewRand(1)
	for _, f := range allFeelings {
		for _, s := range allSleeps {
			for _, p := range allPains {
				q := models.Questionnaire{Feeling: f, Sleep: s, Pain: p}
				if !q.Flagged() {
					continue
				}
				for range 20 {
					assert.Equal(t, models.DayEasy, DetermineDayType(q, freshState(), rng), "%s/%s/%s", f, s, p)
				}
			}
		}
	}
}

func TestDetermineDayType_CooldownForcesEasy(t *testing.T) {
	rng := NewRand(2)
	st := freshState()
	st.CooldownCounter = 1
	for _, f := range allFeelings {
		for _, s := range allSleeps {
			for _, p := range allPains {
				q := models.Questionnaire{Feeling: f, Sleep: s, Pain: p}
				assert.Equal(t, models.DayEasy, DetermineDayType(q, st, rng))
			}
		}
	}
}

func TestDetermineDayType_OverrideBypassesCooldown(t *testing.T) {
	st := freshState()
	st.CooldownCounter = 2
	st.CooldownOverride = true

	q := models.Questionnaire{Feeling: models.FeelingOK, Sleep: models.SleepGood, Pain: models.PainNone}
	assert.Equal(t, models.DayMedium, DetermineDayType(q, st, firstRand{}))
}

func TestDetermineDayType_LastHardDayForcesEasy(t *testing.T) {
	st := freshState()
	st.LastHardDay = true
	q := greenCheckIn(models.Slot30to45, minimal)
	assert.Equal(t, models.DayEasy, DetermineDayType(q, st, lastRand{}))
}

func TestDetermineDayType_OverrideDoesNotBypassLastHardDay(t *testing.T) {
	st := freshState()
	st.CooldownCounter = 1
	st.CooldownOverride = true
	st.LastHardDay = true
	q := greenCheckIn(models.Slot30to45, minimal)
	assert.Equal(t, models.DayEasy, DetermineDayType(q, st, lastRand{}))
}

func TestDetermineDayType_GreenCheckInIsMediumOrHard(t *testing.T) {
	q := greenCheckIn(models.Slot30to45, minimal)
	assert.Equal(t, models.DayMedium, DetermineDayType(q, freshState(), firstRand{}))
	assert.Equal(t, models.DayHard, DetermineDayType(q, freshState(), lastRand{}))

	rng := NewRand(42)
	counts := map[models.DayType]int{}
	const n = 2000
	for range n {
		counts[DetermineDayType(q, freshState(), rng)]++
	}
	assert.Zero(t, counts[models.DayEasy])
	assert.InDelta(t, n/2, counts[models.DayHard], n*0.1, "hard should be drawn about half the time")
	assert.Equal(t, n, counts[models.DayMedium]+counts[models.DayHard])
}

func TestDetermineDayType_OKFeelingIsMedium(t *testing.T) {
	q := models.Questionnaire{Feeling: models.FeelingOK, Sleep: models.SleepGood, Pain: models.PainNone}
	assert.Equal(t, models.DayMedium, DetermineDayType(q, freshState(), lastRand{}))
}

func TestCanUsePower_NeverOffHardDays(t *testing.T) {
	st := freshState()
	for _, day := range allDays {
		if day == models.DayHard {
			continue
		}
		for _, f := range allFeelings {
			for _, s := range allSleeps {
				for _, p := range allPains {
					for _, cd := range []int{0, 1} {
						st.CooldownCounter = cd
						q := models.Questionnaire{Feeling: f, Sleep: s, Pain: p}
						assert.False(t, CanUsePower(st, q, day, testNow))
					}
				}
			}
		}
	}
}

func TestCanUsePower_RequiresGreenCheckInAndNoCooldown(t *testing.T) {
	q := greenCheckIn(models.Slot45to60, home)
	st := freshState()
	assert.True(t, CanUsePower(st, q, models.DayHard, testNow))

	okFeeling := q
	okFeeling.Feeling = models.FeelingOK
	assert.False(t, CanUsePower(st, okFeeling, models.DayHard, testNow))

	st.CooldownCounter = 1
	assert.False(t, CanUsePower(st, q, models.DayHard, testNow))
}

func TestCanUsePower_FrequencyWindowUsesCalendarDays(t *testing.T) {
	q := greenCheckIn(models.Slot45to60, home)

	cases := []struct {
		name     string
		freq     models.PowerFrequency
		lastUsed time.Time
		now      time.Time
		want     bool
	}{
		{
			name:     "weekly, 6 calendar days",
			freq:     models.PowerWeekly,
			lastUsed: time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC),
			want:     false,
		},
		{
			// Less than 7*24h apart, but 7 calendar days.
			name:     "weekly, 7 calendar days",
			freq:     models.PowerWeekly,
			lastUsed: time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC),
			now:      time.Date(2026, 3, 8, 0, 1, 0, 0, time.UTC),
			want:     true,
		},
		{
			name:     "fortnightly, 13 calendar days",
			freq:     models.PowerFortnightly,
			lastUsed: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC),
			want:     false,
		},
		{
			name:     "fortnightly, 14 calendar days",
			freq:     models.PowerFortnightly,
			lastUsed: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			now:      time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC),
			want:     true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := freshState()
			st.PowerFrequency = tc.freq
			last := tc.lastUsed
			st.PowerLastUsed = &last
			assert.Equal(t, tc.want, CanUsePower(st, q, models.DayHard, tc.now))
		})
	}
}

func TestElapsedDays(t *testing.T) {
	from := time.Date(2026, 1, 31, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, ElapsedDays(from, from.Add(time.Hour)))
	assert.Equal(t, 1, ElapsedDays(from, from.Add(3*time.Hour)))
	assert.Equal(t, 29, ElapsedDays(from, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	// Offsets are normalised to UTC before truncation.
	cet := time.FixedZone("CET", 3600)
	assert.Equal(t, 0, ElapsedDays(from, time.Date(2026, 2, 1, 0, 30, 0, 0, cet)))
}
