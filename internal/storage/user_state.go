package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/claude/trainday/internal/models"
)

const stateColumns = `next_priority_bucket, week_mode, week_mode_last_changed, cooldown_counter,
	cooldown_override, power_last_used, last_hard_day, last_session_exercises, power_frequency, updated_at`

// GetState returns the user state, creating the default record on first read.
func (db *DB) GetState(ctx context.Context) (models.UserState, error) {
	if err := ensureState(ctx, db.Pool, db.clock()); err != nil {
		return models.UserState{}, err
	}
	st, err := scanState(db.Pool.QueryRow(ctx, `SELECT `+stateColumns+` FROM user_state WHERE id = 1`))
	if err != nil {
		return models.UserState{}, fmt.Errorf("querying user state: %w", err)
	}
	return st, nil
}

// UpdateState runs fn against the locked state row and writes the result back
// when fn reports a change. Concurrent callers are serialized by the row lock.
func (db *DB) UpdateState(ctx context.Context, fn func(*models.UserState) (bool, error)) (models.UserState, error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.UserState{}, fmt.Errorf("beginning state update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	st, err := updateStateTx(ctx, tx, db.clock(), fn)
	if err != nil {
		return models.UserState{}, err
	}
	// Commit even when fn changed nothing so the row from ensureState persists.
	if err := tx.Commit(ctx); err != nil {
		return models.UserState{}, fmt.Errorf("committing user state: %w", err)
	}
	return st, nil
}

// updateStateTx locks the state row inside tx, applies fn and writes the
// result when fn reports a change. The caller commits.
func updateStateTx(ctx context.Context, tx pgx.Tx, now time.Time, fn func(*models.UserState) (bool, error)) (models.UserState, error) {
	if err := ensureState(ctx, tx, now); err != nil {
		return models.UserState{}, err
	}
	st, err := scanState(tx.QueryRow(ctx, `SELECT `+stateColumns+` FROM user_state WHERE id = 1 FOR UPDATE`))
	if err != nil {
		return models.UserState{}, fmt.Errorf("locking user state: %w", err)
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
	_, err = tx.Exec(ctx, `
		UPDATE user_state SET
			next_priority_bucket = $1,
			week_mode = $2,
			week_mode_last_changed = $3,
			cooldown_counter = $4,
			cooldown_override = $5,
			power_last_used = $6,
			last_hard_day = $7,
			last_session_exercises = $8,
			power_frequency = $9,
			updated_at = $10
		WHERE id = 1
	`, string(st.NextPriorityBucket), string(st.WeekMode), st.WeekModeLastChanged, st.CooldownCounter,
		st.CooldownOverride, st.PowerLastUsed, st.LastHardDay, st.LastSessionExercises,
		string(st.PowerFrequency), st.UpdatedAt)
	if err != nil {
		return models.UserState{}, fmt.Errorf("updating user state: %w", err)
	}
	return st, nil
}

func ensureState(ctx context.Context, q querier, now time.Time) error {
	def := models.DefaultUserState(now)
	_, err := q.Exec(ctx, `
		INSERT INTO user_state (id, next_priority_bucket, week_mode, week_mode_last_changed,
			last_session_exercises, power_frequency, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $3)
		ON CONFLICT (id) DO NOTHING
	`, string(def.NextPriorityBucket), string(def.WeekMode), now, def.LastSessionExercises, string(def.PowerFrequency))
	if err != nil {
		return fmt.Errorf("creating default user state: %w", err)
	}
	return nil
}

func scanState(row pgx.Row) (models.UserState, error) {
	var (
		st         models.UserState
		bucket     string
		weekMode   string
		powerFreq  string
		lastUsed   *time.Time
		lastSessEx []string
	)
	err := row.Scan(&bucket, &weekMode, &st.WeekModeLastChanged, &st.CooldownCounter,
		&st.CooldownOverride, &lastUsed, &st.LastHardDay, &lastSessEx, &powerFreq, &st.UpdatedAt)
	if err != nil {
		return st, err
	}
	st.NextPriorityBucket = models.Category(bucket)
	st.WeekMode = models.WeekMode(weekMode)
	st.PowerFrequency = models.PowerFrequency(powerFreq)
	st.PowerLastUsed = lastUsed
	st.LastSessionExercises = lastSessEx
	if st.LastSessionExercises == nil {
		st.LastSessionExercises = []string{}
	}
	return st, nil
}
