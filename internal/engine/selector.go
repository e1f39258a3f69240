package engine

import "github.com/claude/trainday/internal/models"

// SelectRequest describes one bucket pick.
type SelectRequest struct {
	Category     models.Category
	Equipment    models.Equipment
	WeekMode     models.WeekMode
	Exclude      map[string]bool
	PreferAnchor bool
	// Allow, if set, drops candidates it rejects before any narrowing.
	Allow func(models.Exercise) bool
}

// Candidates returns the pool SelectExercise picks from.
func Candidates(catalog []models.Exercise, req SelectRequest) []models.Exercise {
	var pool []models.Exercise
	for _, ex := range catalog {
		if ex.Category != req.Category || !ex.HasEquipment(req.Equipment) || req.Exclude[ex.ID] {
			continue
		}
		if req.Allow != nil && !req.Allow(ex) {
			continue
		}
		pool = append(pool, ex)
	}
	if len(pool) == 0 {
		return nil
	}

	if req.PreferAnchor {
		pool = narrow(pool, func(ex models.Exercise) bool { return ex.IsAnchor })
	}

	switch {
	case req.WeekMode == models.WeekModeA:
		pool = narrow(pool, func(ex models.Exercise) bool { return ex.Bilateral })
	case req.WeekMode == models.WeekModeB && (req.Category == models.CategorySquat || req.Category == models.CategoryHinge):
		pool = narrow(pool, func(ex models.Exercise) bool { return !ex.Bilateral })
	}
	return pool
}

// SelectExercise picks one exercise uniformly from Candidates.
// ok is false when the filters leave nothing.
func SelectExercise(catalog []models.Exercise, req SelectRequest, rng Rand) (ex models.Exercise, ok bool) {
	pool := Candidates(catalog, req)
	if len(pool) == 0 {
		return models.Exercise{}, false
	}
	return pick(rng, pool), true
}

// narrow keeps the matching subset when it is non-empty.
func narrow(pool []models.Exercise, keep func(models.Exercise) bool) []models.Exercise {
	var out []models.Exercise
	for _, ex := range pool {
		if keep(ex) {
			out = append(out, ex)
		}
	}
	if len(out) == 0 {
		return pool
	}
	return out
}
