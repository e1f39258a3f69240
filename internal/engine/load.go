package engine

import "github.com/claude/trainday/internal/models"

// Load labels.
const (
	LoadBodyweight = "Bodyweight"

	LoadLightEffort    = "Light effort"
	LoadModerateEffort = "Moderate effort"
	LoadMaxEffort      = "Max effort"

	LoadLight    = "Light (60-70%)"
	LoadModerate = "Moderate (75-85%)"
	LoadHeavy    = "Heavy (85-95%)"
)

// LoadLevel returns the descriptive intensity label for ex.
func LoadLevel(ex models.Exercise, day models.DayType, eq models.Equipment) string {
	switch ex.PrescriptionType {
	case models.PrescriptionBWDynamic, models.PrescriptionIsometricHold, models.PrescriptionCrawlTime:
		return byDay(day, LoadLightEffort, LoadModerateEffort, LoadMaxEffort)
	}
	if eq == models.EquipmentBodyweight {
		return LoadBodyweight
	}
	return byDay(day, LoadLight, LoadModerate, LoadHeavy)
}

func byDay(day models.DayType, easy, medium, hard string) string {
	switch day {
	case models.DayEasy:
		return easy
	case models.DayHard:
		return hard
	}
	return medium
}
