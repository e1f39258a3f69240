package models

import "fmt"

// Category is a movement bucket.
type Category string

const (
	CategorySquat Category = "squat"
	CategoryHinge Category = "hinge"
	CategoryPush  Category = "push"
	CategoryPull  Category = "pull"
	CategoryCarry Category = "carry"
	CategoryCrawl Category = "crawl"
)

// Rotation is the fixed priority-bucket cycle.
var Rotation = []Category{CategorySquat, CategoryPull, CategoryHinge, CategoryPush}

// Categories lists every category in display order.
var Categories = []Category{CategorySquat, CategoryHinge, CategoryPush, CategoryPull, CategoryCarry, CategoryCrawl}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// InRotation reports whether c can be a priority bucket.
func (c Category) InRotation() bool {
	for _, k := range Rotation {
		if c == k {
			return true
		}
	}
	return false
}

// Equipment is the setup available for a session.
type Equipment string

const (
	EquipmentHome       Equipment = "home"
	EquipmentMinimal    Equipment = "minimal"
	EquipmentBodyweight Equipment = "bodyweight"
)

func (e Equipment) Valid() bool {
	switch e {
	case EquipmentHome, EquipmentMinimal, EquipmentBodyweight:
		return true
	}
	return false
}

// PrescriptionType classifies how a protocol's template fields are structured.
type PrescriptionType string

const (
	PrescriptionKBStrength    PrescriptionType = "KB_STRENGTH"
	PrescriptionBWDynamic     PrescriptionType = "BW_DYNAMIC"
	PrescriptionIsometricHold PrescriptionType = "ISOMETRIC_HOLD"
	PrescriptionCarryTime     PrescriptionType = "CARRY_TIME"
	PrescriptionCrawlTime     PrescriptionType = "CRAWL_TIME"
	PrescriptionPowerSwing    PrescriptionType = "POWER_SWING"
)

func (p PrescriptionType) Valid() bool {
	switch p {
	case PrescriptionKBStrength, PrescriptionBWDynamic, PrescriptionIsometricHold,
		PrescriptionCarryTime, PrescriptionCrawlTime, PrescriptionPowerSwing:
		return true
	}
	return false
}

// DayType is the intensity tier of a session.
type DayType string

const (
	DayEasy   DayType = "easy"
	DayMedium DayType = "medium"
	DayHard   DayType = "hard"
)

func (d DayType) Valid() bool {
	return d == DayEasy || d == DayMedium || d == DayHard
}

// WeekMode biases squat and hinge selection: A toward bilateral, B toward unilateral.
type WeekMode string

const (
	WeekModeA WeekMode = "A"
	WeekModeB WeekMode = "B"
)

func (w WeekMode) Valid() bool { return w == WeekModeA || w == WeekModeB }

// Toggle returns the other week mode.
func (w WeekMode) Toggle() WeekMode {
	if w == WeekModeA {
		return WeekModeB
	}
	return WeekModeA
}

// PowerFrequency is the minimum spacing between power sessions.
type PowerFrequency string

const (
	PowerWeekly      PowerFrequency = "weekly"
	PowerFortnightly PowerFrequency = "fortnightly"
)

func (p PowerFrequency) Valid() bool { return p == PowerWeekly || p == PowerFortnightly }

// Days returns the gating interval in whole days.
func (p PowerFrequency) Days() int {
	if p == PowerWeekly {
		return 7
	}
	return 14
}

// Questionnaire answer domains.
type (
	Feeling  string
	Sleep    string
	Pain     string
	TimeSlot string
)

const (
	FeelingBad   Feeling = "bad"
	FeelingOK    Feeling = "ok"
	FeelingGreat Feeling = "great"

	SleepBad  Sleep = "bad"
	SleepGood Sleep = "good"

	PainNone    Pain = "none"
	PainPresent Pain = "present"

	Slot20to30 TimeSlot = "20-30"
	Slot30to45 TimeSlot = "30-45"
	Slot45to60 TimeSlot = "45-60"
)

// Feedback is the user's rating of a completed session.
type Feedback string

const (
	FeedbackGood    Feedback = "good"
	FeedbackNotGood Feedback = "not_good"
)

func (f Feedback) Valid() bool { return f == FeedbackGood || f == FeedbackNotGood }

// ParseCategory validates s as a category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
	}
	return c, nil
}

// ParseDayType validates s as a day type.
func ParseDayType(s string) (DayType, error) {
	d := DayType(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown day type %q", ErrInvalidInput, s)
	}
	return d, nil
}
