package models

import "slices"

// Exercise is a catalog entry.
type Exercise struct {
	ID               string           `json:"id" yaml:"id"`
	Name             string           `json:"name" yaml:"name"`
	Category         Category         `json:"category" yaml:"category"`
	Equipment        []Equipment      `json:"equipment" yaml:"equipment"`
	Bilateral        bool             `json:"bilateral" yaml:"bilateral"`
	IsAnchor         bool             `json:"is_anchor" yaml:"is_anchor"`
	PrescriptionType PrescriptionType `json:"prescription_type" yaml:"prescription_type"`
	IsPower          bool             `json:"is_power" yaml:"is_power"`
	ProtocolIDs      []string         `json:"protocol_ids,omitempty" yaml:"protocol_ids,omitempty"`
}

// HasEquipment reports whether the exercise is tagged for eq.
func (e Exercise) HasEquipment(eq Equipment) bool {
	return slices.Contains(e.Equipment, eq)
}

// Protocol is a sets/reps/rest template for one prescription type.
type Protocol struct {
	ID               string           `json:"id" yaml:"id"`
	Name             string           `json:"name" yaml:"name"`
	PrescriptionType PrescriptionType `json:"prescription_type" yaml:"prescription_type"`
	Description      string           `json:"description,omitempty" yaml:"description,omitempty"`
	IsEasyDay        bool             `json:"is_easy_day" yaml:"is_easy_day"`

	Template `yaml:",inline"`
}

// Template holds the optional output fields a protocol prescribes.
type Template struct {
	Sets     string `json:"sets,omitempty" yaml:"sets,omitempty"`
	Reps     string `json:"reps,omitempty" yaml:"reps,omitempty"`
	HoldTime string `json:"hold_time,omitempty" yaml:"hold_time,omitempty"`
	Time     string `json:"time,omitempty" yaml:"time,omitempty"`
	Rest     string `json:"rest,omitempty" yaml:"rest,omitempty"`
	Tempo    string `json:"tempo,omitempty" yaml:"tempo,omitempty"`
}

// ExerciseFilter narrows ListExercises. Zero fields match everything.
type ExerciseFilter struct {
	Category  Category
	Equipment Equipment
}

// Match reports whether e passes the filter.
func (f ExerciseFilter) Match(e Exercise) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Equipment != "" && !e.HasEquipment(f.Equipment) {
		return false
	}
	return true
}

// ProtocolFilter narrows ListProtocols. Zero fields match everything.
type ProtocolFilter struct {
	PrescriptionType PrescriptionType
	EasyDay          *bool
}

func (f ProtocolFilter) Match(p Protocol) bool {
	if f.PrescriptionType != "" && p.PrescriptionType != f.PrescriptionType {
		return false
	}
	if f.EasyDay != nil && p.IsEasyDay != *f.EasyDay {
		return false
	}
	return true
}
