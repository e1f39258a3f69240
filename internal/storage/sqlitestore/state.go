package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/trainday/internal/models"
)

const stateColumns = `next_priority_bucket, week_mode, week_mode_last_changed, cooldown_counter,
	cooldown_override, power_last_used, last_hard_day, last_session_exercises, power_frequency, updated_at`

// GetState returns the user state, creating the default record on first read.
func (s *Store) GetState(ctx context.Context) (models.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureState(ctx, s.db, s.clock()); err != nil {
		return models.UserState{}, err
	}
	st, err := scanState(s.db.QueryRowContext(ctx, `SELECT `+stateColumns+` FROM user_state WHERE id = 1`))
	if err != nil {
		return models.UserState{}, fmt.Errorf("querying user state: %w", err)
	}
	return st, nil
}

// UpdateState runs fn against the current state inside a transaction and
// writes the result back when fn reports a change.
func (s *Store) UpdateState(ctx context.Context, fn func(*models.UserState) (bool, error)) (models.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.UserState{}, fmt.Errorf("beginning state update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	st, err := updateStateTx(ctx, tx, s.clock(), fn)
	if err != nil {
		return models.UserState{}, err
	}
	// Commit even when fn changed nothing so the row from ensureState persists.
	if err := tx.Commit(); err != nil {
		return models.UserState{}, fmt.Errorf("committing user state: %w", err)
	}
	return st, nil
}

// updateStateTx loads the state inside tx, applies fn and writes the result
// when fn reports a change. The caller commits.
func updateStateTx(ctx context.Context, tx *sql.Tx, now time.Time, fn func(*models.UserState) (bool, error)) (models.UserState, error) {
	if err := ensureState(ctx, tx, now); err != nil {
		return models.UserState{}, err
	}
	st, err := scanState(tx.QueryRowContext(ctx, `SELECT `+stateColumns+` FROM user_state WHERE id = 1`))
	if err != nil {
		return models.UserState{}, fmt.Errorf("querying user state: %w", err)
	}

	changed, err := fn(&st)
	if err != nil {
		return models.UserState{}, err
	}
	if !changed {
		return st, nil
	}

	st.UpdatedAt = now
	if st.LastSessionExercises == nil {
		st.LastSessionExercises = []string{}
	}
	lastEx, err := encodeJSON(st.LastSessionExercises)
	if err != nil {
		return models.UserState{}, fmt.Errorf("encoding last session exercises: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE user_state SET
			next_priority_bucket = ?,
			week_mode = ?,
			week_mode_last_changed = ?,
			cooldown_counter = ?,
			cooldown_override = ?,
			power_last_used = ?,
			last_hard_day = ?,
			last_session_exercises = ?,
			power_frequency = ?,
			updated_at = ?
		WHERE id = 1
	`, string(st.NextPriorityBucket), string(st.WeekMode), formatTime(st.WeekModeLastChanged),
		st.CooldownCounter, st.CooldownOverride, formatNullTime(st.PowerLastUsed), st.LastHardDay,
		lastEx, string(st.PowerFrequency), formatTime(st.UpdatedAt))
	if err != nil {
		return models.UserState{}, fmt.Errorf("updating user state: %w", err)
	}
	return st, nil
}

func ensureState(ctx context.Context, q execer, now time.Time) error {
	def := models.DefaultUserState(now)
	_, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_state (id, next_priority_bucket, week_mode, week_mode_last_changed,
			last_session_exercises, power_frequency, updated_at)
		VALUES (1, ?, ?, ?, '[]', ?, ?)
	`, string(def.NextPriorityBucket), string(def.WeekMode), formatTime(now),
		string(def.PowerFrequency), formatTime(now))
	if err != nil {
		return fmt.Errorf("creating default user state: %w", err)
	}
	return nil
}

func scanState(row scanner) (models.UserState, error) {
	var (
		st                          models.UserState
		bucket, weekMode, powerFreq string
		changedAt, updatedAt        string
		lastUsed                    sql.NullString
		lastEx                      string
	)
	err := row.Scan(&bucket, &weekMode, &changedAt, &st.CooldownCounter,
		&st.CooldownOverride, &lastUsed, &st.LastHardDay, &lastEx, &powerFreq, &updatedAt)
	if err != nil {
		return st, err
	}
	st.NextPriorityBucket = models.Category(bucket)
	st.WeekMode = models.WeekMode(weekMode)
	st.PowerFrequency = models.PowerFrequency(powerFreq)
	if st.WeekModeLastChanged, err = parseTime(changedAt); err != nil {
		return st, err
	}
	if st.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return st, err
	}
	if st.PowerLastUsed, err = parseNullTime(lastUsed); err != nil {
		return st, err
	}
	if err := json.Unmarshal([]byte(lastEx), &st.LastSessionExercises); err != nil {
		return st, fmt.Errorf("decoding last session exercises: %w", err)
	}
	if st.LastSessionExercises == nil {
		st.LastSessionExercises = []string{}
	}
	return st, nil
}

// GetBenchmarks returns the stored benchmarks or the defaults when none exist.
func (s *Store) GetBenchmarks(ctx context.Context) (models.Benchmarks, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM benchmarks WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		b := models.DefaultBenchmarks()
		b.UpdatedAt = s.clock().UTC()
		return b, nil
	}
	if err != nil {
		return models.Benchmarks{}, fmt.Errorf("querying benchmarks: %w", err)
	}
	var b models.Benchmarks
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return models.Benchmarks{}, fmt.Errorf("decoding benchmarks: %w", err)
	}
	return b, nil
}

// UpdateBenchmarks applies u to the stored benchmarks and returns the result.
func (s *Store) UpdateBenchmarks(ctx context.Context, u models.BenchmarksUpdate) (models.Benchmarks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.GetBenchmarks(ctx)
	if err != nil {
		return models.Benchmarks{}, err
	}
	u.Apply(&b)
	b.UpdatedAt = s.clock().UTC()

	raw, err := encodeJSON(b)
	if err != nil {
		return models.Benchmarks{}, fmt.Errorf("encoding benchmarks: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO benchmarks (id, data) VALUES (1, ?)`, raw); err != nil {
		return models.Benchmarks{}, fmt.Errorf("upserting benchmarks: %w", err)
	}
	return b, nil
}
