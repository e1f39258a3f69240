package models

import (
	"errors"
	"testing"
	"time"
)

func validQuestionnaire() Questionnaire {
	return Questionnaire{
		Feeling:       FeelingGreat,
		Sleep:         SleepGood,
		Pain:          PainNone,
		TimeAvailable: Slot30to45,
		Equipment:     EquipmentMinimal,
	}
}

// TestQuestionnaireValidate verifies every answer is checked against its domain
// and that failures wrap ErrInvalidInput.
func TestQuestionnaireValidate(t *testing.T) {
	if err := validQuestionnaire().Validate(); err != nil {
		t.Fatalf("valid questionnaire: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Questionnaire)
	}{
		{"feeling", func(q *Questionnaire) { q.Feeling = "tired" }},
		{"sleep", func(q *Questionnaire) { q.Sleep = "" }},
		{"pain", func(q *Questionnaire) { q.Pain = "some" }},
		{"time", func(q *Questionnaire) { q.TimeAvailable = "60-90" }},
		{"equipment", func(q *Questionnaire) { q.Equipment = "gym" }},
		{"override not in rotation", func(q *Questionnaire) { q.OverrideBucket = CategoryCarry }},
		{"override unknown", func(q *Questionnaire) { q.OverrideBucket = "legs" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestionnaire()
			tc.mutate(&q)
			err := q.Validate()
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() = %v, want ErrInvalidInput", err)
			}
		})
	}
}

// TestQuestionnaireFlagged verifies the answers that force a cooldown.
func TestQuestionnaireFlagged(t *testing.T) {
	cases := []struct {
		feeling Feeling
		sleep   Sleep
		pain    Pain
		want    bool
	}{
		{FeelingGreat, SleepGood, PainNone, false},
		{FeelingOK, SleepGood, PainNone, false},
		{FeelingBad, SleepGood, PainNone, true},
		{FeelingGreat, SleepBad, PainNone, true},
		{FeelingGreat, SleepGood, PainPresent, true},
	}
	for _, tc := range cases {
		q := Questionnaire{Feeling: tc.feeling, Sleep: tc.sleep, Pain: tc.pain}
		if got := q.Flagged(); got != tc.want {
			t.Errorf("Flagged(%s/%s/%s) = %v, want %v", tc.feeling, tc.sleep, tc.pain, got, tc.want)
		}
	}
}

func TestWeekModeToggle(t *testing.T) {
	if WeekModeA.Toggle() != WeekModeB || WeekModeB.Toggle() != WeekModeA {
		t.Error("Toggle should swap A and B")
	}
}

func TestPowerFrequencyDays(t *testing.T) {
	if d := PowerWeekly.Days(); d != 7 {
		t.Errorf("weekly = %d, want 7", d)
	}
	if d := PowerFortnightly.Days(); d != 14 {
		t.Errorf("fortnightly = %d, want 14", d)
	}
}

// TestDefaultUserState verifies the first-read record matches the documented defaults.
func TestDefaultUserState(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	st := DefaultUserState(now)
	if st.NextPriorityBucket != CategorySquat {
		t.Errorf("bucket = %q, want squat", st.NextPriorityBucket)
	}
	if st.WeekMode != WeekModeA {
		t.Errorf("week mode = %q, want A", st.WeekMode)
	}
	if !st.WeekModeLastChanged.Equal(now) {
		t.Errorf("week_mode_last_changed = %v, want %v", st.WeekModeLastChanged, now)
	}
	if st.PowerFrequency != PowerFortnightly {
		t.Errorf("power frequency = %q, want fortnightly", st.PowerFrequency)
	}
	if st.PowerLastUsed != nil || st.CooldownCounter != 0 || st.LastHardDay {
		t.Errorf("unexpected non-zero fields: %+v", st)
	}
}

// TestBenchmarksUpdateApply verifies that only set fields overwrite stored values.
func TestBenchmarksUpdateApply(t *testing.T) {
	pushups := 30
	b := DefaultBenchmarks()
	b.PushupMax = &pushups

	newPress := 28
	BenchmarksUpdate{PressBellKg: &newPress}.Apply(&b)

	if b.PressBellKg == nil || *b.PressBellKg != newPress {
		t.Errorf("press_bell_kg = %v, want %d", b.PressBellKg, newPress)
	}
	if b.PushupMax == nil || *b.PushupMax != pushups {
		t.Errorf("pushup_max changed: %v", b.PushupMax)
	}
	if len(b.AvailableBellsMinimal) != 4 {
		t.Errorf("available bells = %v, want defaults kept", b.AvailableBellsMinimal)
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory("hinge"); err != nil || c != CategoryHinge {
		t.Errorf("ParseCategory(hinge) = %q, %v", c, err)
	}
	if _, err := ParseCategory("legs"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseCategory(legs) err = %v, want ErrInvalidInput", err)
	}
}

func TestSessionExerciseIDs(t *testing.T) {
	s := Session{Exercises: []SessionExercise{{ID: "pushup"}, {ID: "kb_row"}}}
	ids := s.ExerciseIDs()
	if len(ids) != 2 || ids[0] != "pushup" || ids[1] != "kb_row" {
		t.Errorf("ExerciseIDs() = %v", ids)
	}
}
