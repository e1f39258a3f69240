package engine

import (
	"fmt"
	"time"

	"github.com/claude/trainday/internal/models"
)

// Session notes.
const (
	NotePriority = "Priority"
	NoteFinisher = "Finisher"
	NoteSupport  = "Support"
)

// SlotPlan sizes a session for one time slot.
type SlotPlan struct {
	MaxExercises     int
	SecondaryBuckets int
	IncludeCarry     bool
	IncludeCrawl     bool
}

// PlanSlots returns the slot plan for a time slot.
func PlanSlots(slot models.TimeSlot) (SlotPlan, error) {
	switch slot {
	case models.Slot20to30:
		return SlotPlan{MaxExercises: 4, SecondaryBuckets: 1, IncludeCarry: true}, nil
	case models.Slot30to45:
		return SlotPlan{MaxExercises: 5, SecondaryBuckets: 2, IncludeCarry: true}, nil
	case models.Slot45to60:
		return SlotPlan{MaxExercises: 5, SecondaryBuckets: 3, IncludeCarry: true, IncludeCrawl: true}, nil
	}
	return SlotPlan{}, fmt.Errorf("%w: time_available %q", models.ErrInvalidInput, slot)
}

// Catalog is the exercise and protocol data a Composer draws from.
type Catalog struct {
	Exercises []models.Exercise
	Protocols []models.Protocol
}

// ComposeRequest is the input for one generation or reroll.
type ComposeRequest struct {
	Questionnaire models.Questionnaire
	State         models.UserState
	Now           time.Time

	// Reroll drops the exclusion seed so the first exercise may repeat.
	Reroll bool
	// PinDayType and PinBucket replace the computed values when set.
	PinDayType models.DayType
	PinBucket  models.Category
}

// Composer builds sessions from a catalog.
type Composer struct {
	catalog Catalog
	rng     Rand
}

// NewComposer returns a Composer over catalog using rng for every pick.
func NewComposer(catalog Catalog, rng Rand) *Composer {
	return &Composer{catalog: catalog, rng: rng}
}

// Compose runs the build steps and returns the session. The session id is
// left for the caller to assign. An error is returned only for an invalid
// time slot or when an exercise has no protocol; empty buckets are skipped
// and reported in Warnings.
func (c *Composer) Compose(req ComposeRequest) (models.Session, error) {
	q, st := req.Questionnaire, req.State

	plan, err := PlanSlots(q.TimeAvailable)
	if err != nil {
		return models.Session{}, err
	}

	day := req.PinDayType
	if day == "" {
		day = DetermineDayType(q, st, c.rng)
	}
	bucket := req.PinBucket
	if bucket == "" {
		bucket = q.OverrideBucket
	}
	if bucket == "" {
		bucket = st.NextPriorityBucket
	}

	b := &builder{
		Composer: c,
		q:        q,
		weekMode: st.WeekMode,
		day:      day,
		power:    CanUsePower(st, q, day, req.Now),
		used:     make(map[string]bool),
	}
	if !req.Reroll && len(st.LastSessionExercises) > 0 {
		b.used[st.LastSessionExercises[0]] = true
	}

	// Priority slot.
	if err := b.fill(bucket, true, func(ex models.Exercise) string {
		if ex.IsAnchor {
			return NotePriority
		}
		return ""
	}, ""); err != nil {
		return models.Session{}, err
	}

	// Secondary slots.
	var others []models.Category
	for _, cat := range models.Rotation {
		if cat != bucket {
			others = append(others, cat)
		}
	}
	c.rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	for _, cat := range others[:min(plan.SecondaryBuckets, len(others))] {
		if len(b.out) >= plan.MaxExercises {
			break
		}
		if err := b.fill(cat, true, nil, ""); err != nil {
			return models.Session{}, err
		}
	}

	if plan.IncludeCarry && len(b.out) < plan.MaxExercises {
		if err := b.fill(models.CategoryCarry, false, fixedNote(NoteFinisher), ""); err != nil {
			return models.Session{}, err
		}
	}
	if plan.IncludeCrawl && len(b.out) < plan.MaxExercises {
		if err := b.fill(models.CategoryCrawl, false, fixedNote(NoteSupport), LoadBodyweight); err != nil {
			return models.Session{}, err
		}
	}

	return models.Session{
		CreatedAt:      req.Now,
		DayType:        day,
		PriorityBucket: bucket,
		Exercises:      b.out,
		TimeSlot:       q.TimeAvailable,
		Equipment:      q.Equipment,
		WeekMode:       st.WeekMode,
		Feeling:        q.Feeling,
		Sleep:          q.Sleep,
		Pain:           q.Pain,
		IsReroll:       req.Reroll,
		Warnings:       b.warnings,
	}, nil
}

// Prescribe resolves the protocol and load label for ex on the given day.
func (c *Composer) Prescribe(ex models.Exercise, day models.DayType, eq models.Equipment) (models.SessionExercise, error) {
	proto, err := ResolveProtocol(ex, day, c.catalog.Protocols, c.rng)
	if err != nil {
		return models.SessionExercise{}, err
	}
	return models.SessionExercise{
		ID:         ex.ID,
		Name:       ex.Name,
		Category:   ex.Category,
		LoadLevel:  LoadLevel(ex, day, eq),
		Protocol:   proto.Name,
		ProtocolID: proto.ID,
		Template:   proto.Template,
		IsPower:    ex.IsPower,
	}, nil
}

// PickGated selects from req, retrying while the pick is a power exercise
// that powerAllowed forbids. Each denied id is excluded from the next try.
func (c *Composer) PickGated(req SelectRequest, powerAllowed bool) (models.Exercise, bool) {
	denied := make(map[string]bool)
	allow := req.Allow
	req.Allow = func(ex models.Exercise) bool {
		if denied[ex.ID] {
			return false
		}
		return allow == nil || allow(ex)
	}
	for {
		ex, ok := SelectExercise(c.catalog.Exercises, req, c.rng)
		if !ok {
			return models.Exercise{}, false
		}
		if !ex.IsPower || powerAllowed {
			return ex, true
		}
		denied[ex.ID] = true
	}
}

type builder struct {
	*Composer
	q        models.Questionnaire
	weekMode models.WeekMode
	day      models.DayType
	power    bool

	used     map[string]bool
	out      []models.SessionExercise
	warnings []string
}

func fixedNote(note string) func(models.Exercise) string {
	return func(models.Exercise) string { return note }
}

// fill selects one exercise from cat and appends it. A bucket with no
// candidate is recorded as a warning and skipped.
func (b *builder) fill(cat models.Category, preferAnchor bool, note func(models.Exercise) string, load string) error {
	ex, ok := b.PickGated(SelectRequest{
		Category:     cat,
		Equipment:    b.q.Equipment,
		WeekMode:     b.weekMode,
		Exclude:      b.used,
		PreferAnchor: preferAnchor,
	}, b.power)
	if !ok {
		b.warnings = append(b.warnings, fmt.Sprintf("no %s exercise available for %s equipment", cat, b.q.Equipment))
		return nil
	}

	entry, err := b.Prescribe(ex, b.day, b.q.Equipment)
	if err != nil {
		return err
	}
	if load != "" {
		entry.LoadLevel = load
	}
	if note != nil {
		entry.Notes = note(ex)
	}
	b.out = append(b.out, entry)
	b.used[ex.ID] = true
	return nil
}
