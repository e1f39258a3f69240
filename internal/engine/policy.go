package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/claude/trainday/internal/models"
)

// WeekModePolicy selects how the A/B week mode changes over time.
type WeekModePolicy string

const (
	// WeekModeElapsed flips A/B once 7 calendar days have passed since the
	// last change.
	WeekModeElapsed WeekModePolicy = "elapsed"
	// WeekModeISOWeek derives the mode from ISO week parity: odd A, even B.
	WeekModeISOWeek WeekModePolicy = "iso_week"
)

// ParseWeekModePolicy validates s. The empty string means WeekModeElapsed.
func ParseWeekModePolicy(s string) (WeekModePolicy, error) {
	switch WeekModePolicy(s) {
	case "", WeekModeElapsed:
		return WeekModeElapsed, nil
	case WeekModeISOWeek:
		return WeekModeISOWeek, nil
	}
	return "", fmt.Errorf("%w: week mode policy %q", models.ErrInvalidInput, s)
}

// Policy holds the tunables of the state transitions.
type Policy struct {
	PowerExerciseID  string
	CooldownSessions int
	WeekMode         WeekModePolicy
}

// DefaultPolicy returns kb_swing as the power exercise, a two-session
// cooldown and the elapsed-days week mode policy.
func DefaultPolicy() Policy {
	return Policy{
		PowerExerciseID:  "kb_swing",
		CooldownSessions: 2,
		WeekMode:         WeekModeElapsed,
	}
}

// NextBucket returns the bucket after c in the rotation. Unknown buckets
// restart the cycle.
func NextBucket(c models.Category) models.Category {
	i := slices.Index(models.Rotation, c)
	return models.Rotation[(i+1)%len(models.Rotation)]
}

// Advance returns st updated for the completion of session with feedback.
func (p Policy) Advance(st models.UserState, session models.Session, feedback models.Feedback, now time.Time) models.UserState {
	next := st
	next.NextPriorityBucket = NextBucket(st.NextPriorityBucket)

	if feedback == models.FeedbackNotGood {
		next.CooldownCounter = p.CooldownSessions
		next.CooldownOverride = false
	} else if next.CooldownCounter > 0 {
		next.CooldownCounter--
	}

	ids := session.ExerciseIDs()
	if slices.Contains(ids, p.PowerExerciseID) {
		t := now
		next.PowerLastUsed = &t
	}
	next.LastHardDay = session.DayType == models.DayHard
	next.LastSessionExercises = ids
	next.UpdatedAt = now
	return next
}

// ApplyWeekMode updates the week mode for now. changed is false when st
// is returned untouched.
func (p Policy) ApplyWeekMode(st models.UserState, now time.Time) (next models.UserState, changed bool) {
	next = st
	switch p.WeekMode {
	case WeekModeISOWeek:
		_, week := now.UTC().ISOWeek()
		mode := models.WeekModeB
		if week%2 == 1 {
			mode = models.WeekModeA
		}
		if mode == st.WeekMode {
			return st, false
		}
		next.WeekMode = mode
	default:
		if ElapsedDays(st.WeekModeLastChanged, now) < 7 {
			return st, false
		}
		next.WeekMode = st.WeekMode.Toggle()
	}
	next.WeekModeLastChanged = now
	next.UpdatedAt = now
	return next, true
}

// FlagCooldown starts a cooldown after a check-in with pain, a bad
// feeling or bad sleep.
func (p Policy) FlagCooldown(st models.UserState, q models.Questionnaire, now time.Time) (models.UserState, bool) {
	if !q.Flagged() {
		return st, false
	}
	st.CooldownCounter = p.CooldownSessions
	st.UpdatedAt = now
	return st, true
}
