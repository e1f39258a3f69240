package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Questionnaire is the daily check-in that drives generation.
type Questionnaire struct {
	Feeling        Feeling   `json:"feeling"`
	Sleep          Sleep     `json:"sleep"`
	Pain           Pain      `json:"pain"`
	TimeAvailable  TimeSlot  `json:"time_available"`
	Equipment      Equipment `json:"equipment"`
	OverrideBucket Category  `json:"override_bucket,omitempty"`
}

// Validate returns ErrInvalidInput for any answer outside its domain.
func (q Questionnaire) Validate() error {
	switch q.Feeling {
	case FeelingBad, FeelingOK, FeelingGreat:
	default:
		return invalid("feeling", string(q.Feeling))
	}
	switch q.Sleep {
	case SleepBad, SleepGood:
	default:
		return invalid("sleep", string(q.Sleep))
	}
	switch q.Pain {
	case PainNone, PainPresent:
	default:
		return invalid("pain", string(q.Pain))
	}
	switch q.TimeAvailable {
	case Slot20to30, Slot30to45, Slot45to60:
	default:
		return invalid("time_available", string(q.TimeAvailable))
	}
	if !q.Equipment.Valid() {
		return invalid("equipment", string(q.Equipment))
	}
	if q.OverrideBucket != "" && !q.OverrideBucket.InRotation() {
		return invalid("override_bucket", string(q.OverrideBucket))
	}
	return nil
}

// Flagged reports whether any answer forces an easy day and a cooldown.
func (q Questionnaire) Flagged() bool {
	return q.Pain == PainPresent || q.Feeling == FeelingBad || q.Sleep == SleepBad
}

func invalid(field, value string) error {
	return fmt.Errorf("%w: %s %q", ErrInvalidInput, field, value)
}

// SessionExercise is one prescribed entry in a session.
type SessionExercise struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	LoadLevel  string   `json:"load_level"`
	Protocol   string   `json:"protocol"`
	ProtocolID string   `json:"protocol_id"`
	Template
	Notes   string `json:"notes"`
	IsPower bool   `json:"is_power,omitempty"`
}

// Session is a generated workout.
type Session struct {
	ID             uuid.UUID         `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	DayType        DayType           `json:"day_type"`
	PriorityBucket Category          `json:"priority_bucket"`
	Exercises      []SessionExercise `json:"exercises"`
	TimeSlot       TimeSlot          `json:"time_slot"`
	Equipment      Equipment         `json:"equipment"`
	WeekMode       WeekMode          `json:"week_mode"`
	Feeling        Feeling           `json:"feeling"`
	Sleep          Sleep             `json:"sleep"`
	Pain           Pain              `json:"pain"`
	IsReroll       bool              `json:"is_reroll"`
	Completed      bool              `json:"completed"`
	Feedback       *Feedback         `json:"feedback,omitempty"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// ExerciseIDs returns the ids of the session's exercises in order.
func (s Session) ExerciseIDs() []string {
	ids := make([]string, 0, len(s.Exercises))
	for _, ex := range s.Exercises {
		ids = append(ids, ex.ID)
	}
	return ids
}

// Answers rebuilds the questionnaire fields stored on the session.
func (s Session) Answers() Questionnaire {
	return Questionnaire{
		Feeling:       s.Feeling,
		Sleep:         s.Sleep,
		Pain:          s.Pain,
		TimeAvailable: s.TimeSlot,
		Equipment:     s.Equipment,
	}
}

// CompleteResult is returned after a session is marked completed.
type CompleteResult struct {
	SessionID          uuid.UUID `json:"session_id"`
	NextPriorityBucket Category  `json:"next_priority_bucket"`
	State              UserState `json:"state"`
}
