package engine

import (
	"time"

	"github.com/claude/trainday/internal/models"
)

var (
	home       = models.EquipmentHome
	minimal    = models.EquipmentMinimal
	bodyweight = models.EquipmentBodyweight
)

func ex(id string, cat models.Category, pt models.PrescriptionType, eq []models.Equipment, bilateral, anchor bool) models.Exercise {
	return models.Exercise{
		ID:               id,
		Name:             id,
		Category:         cat,
		Equipment:        eq,
		Bilateral:        bilateral,
		IsAnchor:         anchor,
		PrescriptionType: pt,
	}
}

// testExercises is a trimmed catalog covering every category, both
// laterality variants for squat and hinge, and one power movement.
func testExercises() []models.Exercise {
	kb := []models.Equipment{home, minimal}
	all := []models.Equipment{home, minimal, bodyweight}

	swing := ex("kb_swing", models.CategoryHinge, models.PrescriptionPowerSwing, kb, true, false)
	swing.IsPower = true

	return []models.Exercise{
		ex("kb_goblet_squat", models.CategorySquat, models.PrescriptionKBStrength, kb, true, false),
		ex("single_kb_front_squat", models.CategorySquat, models.PrescriptionKBStrength, kb, true, true),
		ex("kb_split_squat", models.CategorySquat, models.PrescriptionKBStrength, kb, false, true),
		ex("atg_split_squat", models.CategorySquat, models.PrescriptionBWDynamic, all, false, false),
		ex("bw_lunge", models.CategorySquat, models.PrescriptionBWDynamic, all, false, false),

		ex("kb_sumo_deadlift", models.CategoryHinge, models.PrescriptionKBStrength, kb, true, false),
		ex("single_leg_kb_deadlift", models.CategoryHinge, models.PrescriptionKBStrength, kb, false, true),
		ex("single_leg_hip_thrust", models.CategoryHinge, models.PrescriptionBWDynamic, all, false, false),
		swing,

		ex("pushup", models.CategoryPush, models.PrescriptionBWDynamic, all, true, true),
		ex("kb_press_single", models.CategoryPush, models.PrescriptionKBStrength, kb, false, true),
		ex("sfg_plank", models.CategoryPush, models.PrescriptionIsometricHold, all, true, false),

		ex("kb_row", models.CategoryPull, models.PrescriptionKBStrength, kb, false, false),
		ex("bw_batwing_hold", models.CategoryPull, models.PrescriptionIsometricHold, all, true, false),
		ex("pullup", models.CategoryPull, models.PrescriptionBWDynamic, []models.Equipment{home}, true, true),

		ex("farmer_carry", models.CategoryCarry, models.PrescriptionCarryTime, kb, true, true),
		ex("suitcase_carry", models.CategoryCarry, models.PrescriptionCarryTime, kb, false, false),

		ex("bear_crawl", models.CategoryCrawl, models.PrescriptionCrawlTime, all, true, false),
		ex("tiger_crawl", models.CategoryCrawl, models.PrescriptionCrawlTime, all, true, false),
	}
}

func proto(id string, pt models.PrescriptionType, easy bool) models.Protocol {
	return models.Protocol{
		ID:               id,
		Name:             id,
		PrescriptionType: pt,
		IsEasyDay:        easy,
		Template:         models.Template{Sets: "3", Reps: "5", Rest: "60s"},
	}
}

func testProtocols() []models.Protocol {
	return []models.Protocol{
		proto("kb_ladder_123", models.PrescriptionKBStrength, false),
		proto("kb_sets_across", models.PrescriptionKBStrength, false),
		proto("kb_light_practice", models.PrescriptionKBStrength, true),
		proto("bw_sets_across", models.PrescriptionBWDynamic, false),
		proto("bw_movement_flow", models.PrescriptionBWDynamic, true),
		proto("iso_holds", models.PrescriptionIsometricHold, false),
		proto("iso_short_holds", models.PrescriptionIsometricHold, true),
		proto("carry_distance", models.PrescriptionCarryTime, false),
		proto("carry_easy", models.PrescriptionCarryTime, true),
		proto("crawl_time", models.PrescriptionCrawlTime, false),
		proto("crawl_easy", models.PrescriptionCrawlTime, true),
		proto("swing_otm", models.PrescriptionPowerSwing, false),
	}
}

func testCatalog() Catalog {
	return Catalog{Exercises: testExercises(), Protocols: testProtocols()}
}

var testNow = time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)

func freshState() models.UserState {
	return models.DefaultUserState(testNow.AddDate(0, 0, -1))
}

func greenCheckIn(slot models.TimeSlot, eq models.Equipment) models.Questionnaire {
	return models.Questionnaire{
		Feeling:       models.FeelingGreat,
		Sleep:         models.SleepGood,
		Pain:          models.PainNone,
		TimeAvailable: slot,
		Equipment:     eq,
	}
}

// firstRand always picks index 0 and never reorders.
type firstRand struct{}

func (firstRand) IntN(int) int               { return 0 }
func (firstRand) Shuffle(int, func(i, j int)) {}

// lastRand always picks the highest index and never reorders.
type lastRand struct{}

func (lastRand) IntN(n int) int              { return n - 1 }
func (lastRand) Shuffle(int, func(i, j int)) {}
