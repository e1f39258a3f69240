// Package training runs the generate, reroll, swap and complete workflows
// against a store.
package training

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/trainday/internal/catalog"
	"github.com/claude/trainday/internal/engine"
	"github.com/claude/trainday/internal/models"
	"github.com/claude/trainday/internal/storage"
	"github.com/claude/trainday/internal/storage/sqlitestore"
)

// Store is the persistence the service needs. Both backends satisfy it.
type Store interface {
	catalog.Store

	GetExercise(ctx context.Context, id string) (models.Exercise, error)
	ListExercises(ctx context.Context, f models.ExerciseFilter) ([]models.Exercise, error)
	GetProtocol(ctx context.Context, id string) (models.Protocol, error)
	ListProtocols(ctx context.Context, f models.ProtocolFilter) ([]models.Protocol, error)

	GetState(ctx context.Context) (models.UserState, error)
	// UpdateState must not be re-entered from fn.
	UpdateState(ctx context.Context, fn func(*models.UserState) (bool, error)) (models.UserState, error)

	// SaveSession and CompleteSession apply fn in the same transaction as the
	// session write. A nil fn leaves the state untouched.
	SaveSession(ctx context.Context, s models.Session, fn func(*models.UserState) (bool, error)) (models.UserState, error)
	GetSession(ctx context.Context, id uuid.UUID) (models.Session, error)
	ReplaceSessionExercises(ctx context.Context, id uuid.UUID, exercises []models.SessionExercise) error
	CompleteSession(ctx context.Context, id uuid.UUID, feedback models.Feedback, at time.Time,
		fn func(*models.UserState) (bool, error)) (models.UserState, error)
	ListCompletedSessions(ctx context.Context, limit int) ([]models.Session, error)

	GetBenchmarks(ctx context.Context) (models.Benchmarks, error)
	UpdateBenchmarks(ctx context.Context, u models.BenchmarksUpdate) (models.Benchmarks, error)

	Reset(ctx context.Context) error
}

var (
	_ Store = (*storage.DB)(nil)
	_ Store = (*sqlitestore.Store)(nil)
)

// RerollRequest asks for a fresh session, optionally keeping the day type
// and priority bucket of the one being replaced.
type RerollRequest struct {
	models.Questionnaire
	PreserveDayType        models.DayType  `json:"preserve_day_type,omitempty"`
	PreservePriorityBucket models.Category `json:"preserve_priority_bucket,omitempty"`
}

// SwapRequest replaces one exercise of an open session.
type SwapRequest struct {
	SessionID  uuid.UUID `json:"session_id"`
	ExerciseID string    `json:"exercise_id"`
}

// Service serializes state mutations and wires the engine to a store.
type Service struct {
	store  Store
	policy engine.Policy
	logger *slog.Logger

	mu    sync.Mutex
	rng   engine.Rand
	clock func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRand replaces the time-seeded random source.
func WithRand(rng engine.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.clock = now }
}

// NewService returns a Service over store.
func NewService(store Store, policy engine.Policy, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		policy: policy,
		logger: logger,
		rng:    engine.NewTimeSeededRand(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

func (s *Service) composer(ctx context.Context) (*engine.Composer, error) {
	exercises, err := s.store.ListExercises(ctx, models.ExerciseFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading exercises: %w", err)
	}
	protocols, err := s.store.ListProtocols(ctx, models.ProtocolFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading protocols: %w", err)
	}
	return engine.NewComposer(engine.Catalog{Exercises: exercises, Protocols: protocols}, s.rng), nil
}

// Generate composes and stores a session for today's check-in. The week
// mode toggle runs first; a flagged check-in starts a cooldown afterwards.
func (s *Service) Generate(ctx context.Context, q models.Questionnaire) (models.Session, error) {
	if err := q.Validate(); err != nil {
		return models.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.compose(ctx, engine.ComposeRequest{Questionnaire: q})
}

// Reroll composes a replacement session without the repeat-avoidance seed.
func (s *Service) Reroll(ctx context.Context, req RerollRequest) (models.Session, error) {
	if err := req.Questionnaire.Validate(); err != nil {
		return models.Session{}, err
	}
	if req.PreserveDayType != "" && !req.PreserveDayType.Valid() {
		return models.Session{}, fmt.Errorf("%w: preserve_day_type %q", models.ErrInvalidInput, req.PreserveDayType)
	}
	if req.PreservePriorityBucket != "" && !req.PreservePriorityBucket.InRotation() {
		return models.Session{}, fmt.Errorf("%w: preserve_priority_bucket %q", models.ErrInvalidInput, req.PreservePriorityBucket)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.compose(ctx, engine.ComposeRequest{
		Questionnaire: req.Questionnaire,
		Reroll:        true,
		PinDayType:    req.PreserveDayType,
		PinBucket:     req.PreservePriorityBucket,
	})
}

func (s *Service) compose(ctx context.Context, req engine.ComposeRequest) (models.Session, error) {
	now := s.now()
	st, err := s.store.GetState(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("reading state: %w", err)
	}
	// Rerolls replace a session already generated today, so the week mode
	// only advances on a fresh generation.
	toggled := false
	if !req.Reroll {
		st, toggled = s.policy.ApplyWeekMode(st, now)
	}

	c, err := s.composer(ctx)
	if err != nil {
		return models.Session{}, err
	}
	req.State = st
	req.Now = now
	session, err := c.Compose(req)
	if err != nil {
		return models.Session{}, fmt.Errorf("composing session: %w", err)
	}
	session.ID = uuid.New()

	q := req.Questionnaire
	_, err = s.store.SaveSession(ctx, session, func(cur *models.UserState) (bool, error) {
		changed := false
		if toggled {
			cur.WeekMode = st.WeekMode
			cur.WeekModeLastChanged = st.WeekModeLastChanged
			changed = true
		}
		if req.Reroll {
			return changed, nil
		}
		if next, flagged := s.policy.FlagCooldown(*cur, q, now); flagged {
			*cur = next
			changed = true
		}
		return changed, nil
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("saving session: %w", err)
	}

	s.logger.Info("session generated",
		"session_id", session.ID,
		"reroll", session.IsReroll,
		"day_type", session.DayType,
		"priority_bucket", session.PriorityBucket,
		"week_mode", session.WeekMode,
		"week_mode_toggled", toggled,
		"exercises", session.ExerciseIDs(),
		"warnings", len(session.Warnings),
	)
	return session, nil
}

// Swap replaces one exercise of an open session with another from the same
// category. Every exercise already in the session is excluded.
func (s *Service) Swap(ctx context.Context, req SwapRequest) (models.Session, error) {
	if req.ExerciseID == "" {
		return models.Session{}, fmt.Errorf("%w: exercise_id is required", models.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.store.GetSession(ctx, req.SessionID)
	if err != nil {
		return models.Session{}, err
	}
	if session.Completed {
		return models.Session{}, fmt.Errorf("session %s: %w", session.ID, models.ErrAlreadyCompleted)
	}

	idx := -1
	for i, ex := range session.Exercises {
		if ex.ID == req.ExerciseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Session{}, fmt.Errorf("exercise %q in session %s: %w", req.ExerciseID, session.ID, models.ErrNotFound)
	}
	old := session.Exercises[idx]

	st, err := s.store.GetState(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("reading state: %w", err)
	}
	c, err := s.composer(ctx)
	if err != nil {
		return models.Session{}, err
	}

	exclude := make(map[string]bool, len(session.Exercises))
	for _, ex := range session.Exercises {
		exclude[ex.ID] = true
	}
	answers := session.Answers()
	ex, ok := c.PickGated(engine.SelectRequest{
		Category:  old.Category,
		Equipment: session.Equipment,
		WeekMode:  session.WeekMode,
		Exclude:   exclude,
	}, engine.CanUsePower(st, answers, session.DayType, s.now()))
	if !ok {
		return models.Session{}, fmt.Errorf("%w: no alternative %s exercise for %s equipment",
			models.ErrNoCandidates, old.Category, session.Equipment)
	}

	entry, err := c.Prescribe(ex, session.DayType, session.Equipment)
	if err != nil {
		return models.Session{}, err
	}
	entry.Notes = old.Notes
	if old.Notes == engine.NotePriority && !ex.IsAnchor {
		entry.Notes = ""
	}
	if old.Category == models.CategoryCrawl {
		entry.LoadLevel = engine.LoadBodyweight
	}
	session.Exercises[idx] = entry

	if err := s.store.ReplaceSessionExercises(ctx, session.ID, session.Exercises); err != nil {
		return models.Session{}, err
	}

	s.logger.Info("exercise swapped", "session_id", session.ID, "from", old.ID, "to", ex.ID)
	return session, nil
}

// Complete records feedback on a session and advances the state.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, feedback models.Feedback) (models.CompleteResult, error) {
	if !feedback.Valid() {
		return models.CompleteResult{}, fmt.Errorf("%w: feedback %q", models.ErrInvalidInput, feedback)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return models.CompleteResult{}, err
	}
	if session.Completed {
		return models.CompleteResult{}, fmt.Errorf("session %s: %w", id, models.ErrAlreadyCompleted)
	}

	now := s.now()
	st, err := s.store.CompleteSession(ctx, id, feedback, now, func(cur *models.UserState) (bool, error) {
		*cur = s.policy.Advance(*cur, session, feedback, now)
		return true, nil
	})
	if err != nil {
		return models.CompleteResult{}, fmt.Errorf("completing session: %w", err)
	}

	s.logger.Info("session completed",
		"session_id", id,
		"feedback", feedback,
		"next_priority_bucket", st.NextPriorityBucket,
		"cooldown_counter", st.CooldownCounter,
	)
	return models.CompleteResult{SessionID: id, NextPriorityBucket: st.NextPriorityBucket, State: st}, nil
}

// State returns the current user state.
func (s *Service) State(ctx context.Context) (models.UserState, error) {
	return s.store.GetState(ctx)
}

// UpdateSettings applies the user-editable state fields. Setting the week
// mode stamps the change time so the weekly toggle restarts from now.
func (s *Service) UpdateSettings(ctx context.Context, set models.Settings) (models.UserState, error) {
	if err := set.Validate(); err != nil {
		return models.UserState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	st, err := s.store.UpdateState(ctx, func(cur *models.UserState) (bool, error) {
		changed := false
		if set.WeekMode != nil {
			cur.WeekMode = *set.WeekMode
			cur.WeekModeLastChanged = now
			changed = true
		}
		if set.PowerFrequency != nil {
			cur.PowerFrequency = *set.PowerFrequency
			changed = true
		}
		if set.CooldownOverride != nil {
			cur.CooldownOverride = *set.CooldownOverride
			changed = true
		}
		return changed, nil
	})
	if err != nil {
		return models.UserState{}, err
	}
	s.logger.Info("settings updated", "week_mode", st.WeekMode, "power_frequency", st.PowerFrequency,
		"cooldown_override", st.CooldownOverride)
	return st, nil
}

// Benchmarks returns the stored benchmarks.
func (s *Service) Benchmarks(ctx context.Context) (models.Benchmarks, error) {
	return s.store.GetBenchmarks(ctx)
}

// UpdateBenchmarks overwrites the supplied benchmark fields.
func (s *Service) UpdateBenchmarks(ctx context.Context, u models.BenchmarksUpdate) (models.Benchmarks, error) {
	b, err := s.store.UpdateBenchmarks(ctx, u)
	if err != nil {
		return models.Benchmarks{}, err
	}
	s.logger.Info("benchmarks updated")
	return b, nil
}

// Session returns one stored session.
func (s *Service) Session(ctx context.Context, id uuid.UUID) (models.Session, error) {
	return s.store.GetSession(ctx, id)
}

// History returns completed sessions newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.Session, error) {
	return s.store.ListCompletedSessions(ctx, limit)
}

// Exercises lists the catalog, optionally narrowed to one category.
func (s *Service) Exercises(ctx context.Context, category models.Category) ([]models.Exercise, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: category %q", models.ErrInvalidInput, category)
	}
	return s.store.ListExercises(ctx, models.ExerciseFilter{Category: category})
}

// Exercise returns one catalog exercise.
func (s *Service) Exercise(ctx context.Context, id string) (models.Exercise, error) {
	return s.store.GetExercise(ctx, id)
}

// Protocol returns one protocol.
func (s *Service) Protocol(ctx context.Context, id string) (models.Protocol, error) {
	return s.store.GetProtocol(ctx, id)
}

// Protocols lists every protocol.
func (s *Service) Protocols(ctx context.Context) ([]models.Protocol, error) {
	return s.store.ListProtocols(ctx, models.ProtocolFilter{})
}

// Reset clears the state and session history.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.logger.Warn("training state reset")
	return nil
}
