package engine

import (
	"fmt"
	"slices"

	"github.com/claude/trainday/internal/models"
)

// ResolveProtocol picks a protocol for ex on a day of type day.
//
// Custom protocol ids on the exercise win when any of them matches the
// day's easy flag. Otherwise protocols of the exercise's prescription type
// with a matching easy flag are used, and failing that any protocol of
// that prescription type. ErrNoProtocol is returned when nothing matches.
func ResolveProtocol(ex models.Exercise, day models.DayType, protocols []models.Protocol, rng Rand) (models.Protocol, error) {
	easy := day == models.DayEasy

	if len(ex.ProtocolIDs) > 0 {
		custom := filterProtocols(protocols, func(p models.Protocol) bool {
			return slices.Contains(ex.ProtocolIDs, p.ID) && p.IsEasyDay == easy
		})
		if len(custom) > 0 {
			return pick(rng, custom), nil
		}
	}

	typed := filterProtocols(protocols, func(p models.Protocol) bool {
		return p.PrescriptionType == ex.PrescriptionType && p.IsEasyDay == easy
	})
	if len(typed) > 0 {
		return pick(rng, typed), nil
	}

	loose := filterProtocols(protocols, func(p models.Protocol) bool {
		return p.PrescriptionType == ex.PrescriptionType
	})
	if len(loose) > 0 {
		return pick(rng, loose), nil
	}

	return models.Protocol{}, fmt.Errorf("%w: exercise %s (%s)", models.ErrNoProtocol, ex.ID, ex.PrescriptionType)
}

func filterProtocols(protocols []models.Protocol, keep func(models.Protocol) bool) []models.Protocol {
	var out []models.Protocol
	for _, p := range protocols {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
