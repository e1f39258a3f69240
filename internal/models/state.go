package models

import "time"

// UserState is the single persisted training state record.
type UserState struct {
	NextPriorityBucket   Category       `json:"next_priority_bucket"`
	WeekMode             WeekMode       `json:"week_mode"`
	WeekModeLastChanged  time.Time      `json:"week_mode_last_changed"`
	CooldownCounter      int            `json:"cooldown_counter"`
	CooldownOverride     bool           `json:"cooldown_override"`
	PowerLastUsed        *time.Time     `json:"power_last_used"`
	LastHardDay          bool           `json:"last_hard_day"`
	LastSessionExercises []string       `json:"last_session_exercises"`
	PowerFrequency       PowerFrequency `json:"power_frequency"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// DefaultUserState returns the record created on first read.
func DefaultUserState(now time.Time) UserState {
	return UserState{
		NextPriorityBucket:   CategorySquat,
		WeekMode:             WeekModeA,
		WeekModeLastChanged:  now,
		LastSessionExercises: []string{},
		PowerFrequency:       PowerFortnightly,
		UpdatedAt:            now,
	}
}

// Settings is a partial update of the user-editable state fields.
type Settings struct {
	WeekMode         *WeekMode       `json:"week_mode,omitempty"`
	PowerFrequency   *PowerFrequency `json:"power_frequency,omitempty"`
	CooldownOverride *bool           `json:"cooldown_override,omitempty"`
}

// Validate checks every set field against its domain.
func (s Settings) Validate() error {
	if s.WeekMode != nil && !s.WeekMode.Valid() {
		return invalid("week_mode", string(*s.WeekMode))
	}
	if s.PowerFrequency != nil && !s.PowerFrequency.Valid() {
		return invalid("power_frequency", string(*s.PowerFrequency))
	}
	return nil
}

// Benchmarks are user-supplied strength reference numbers.
// They are stored and editable but feed no load computation.
type Benchmarks struct {
	PressBellKg           *int      `json:"press_bell_kg"`
	PressReps             *int      `json:"press_reps"`
	PushupMax             *int      `json:"pushup_max"`
	PullupMax             *int      `json:"pullup_max"`
	FrontSquatBellsKg     []int     `json:"front_squat_bells_kg"`
	FrontSquatReps        *int      `json:"front_squat_reps"`
	HingeBellKg           *int      `json:"hinge_bell_kg"`
	HingeReps             *int      `json:"hinge_reps"`
	AvailableBellsMinimal []int     `json:"available_bells_minimal"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DefaultBenchmarks returns the record created on first read.
func DefaultBenchmarks() Benchmarks {
	return Benchmarks{AvailableBellsMinimal: []int{16, 24, 28, 32}}
}

// BenchmarksUpdate carries the fields to overwrite; nil fields are left alone.
type BenchmarksUpdate struct {
	PressBellKg           *int  `json:"press_bell_kg,omitempty"`
	PressReps             *int  `json:"press_reps,omitempty"`
	PushupMax             *int  `json:"pushup_max,omitempty"`
	PullupMax             *int  `json:"pullup_max,omitempty"`
	FrontSquatBellsKg     []int `json:"front_squat_bells_kg,omitempty"`
	FrontSquatReps        *int  `json:"front_squat_reps,omitempty"`
	HingeBellKg           *int  `json:"hinge_bell_kg,omitempty"`
	HingeReps             *int  `json:"hinge_reps,omitempty"`
	AvailableBellsMinimal []int `json:"available_bells_minimal,omitempty"`
}

// Apply copies the non-nil fields of u onto b.
func (u BenchmarksUpdate) Apply(b *Benchmarks) {
	if u.PressBellKg != nil {
		b.PressBellKg = u.PressBellKg
	}
	if u.PressReps != nil {
		b.PressReps = u.PressReps
	}
	if u.PushupMax != nil {
		b.PushupMax = u.PushupMax
	}
	if u.PullupMax != nil {
		b.PullupMax = u.PullupMax
	}
	if u.FrontSquatBellsKg != nil {
		b.FrontSquatBellsKg = u.FrontSquatBellsKg
	}
	if u.FrontSquatReps != nil {
		b.FrontSquatReps = u.FrontSquatReps
	}
	if u.HingeBellKg != nil {
		b.HingeBellKg = u.HingeBellKg
	}
	if u.HingeReps != nil {
		b.HingeReps = u.HingeReps
	}
	if u.AvailableBellsMinimal != nil {
		b.AvailableBellsMinimal = u.AvailableBellsMinimal
	}
}
