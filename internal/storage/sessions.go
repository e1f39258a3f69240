package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/trainday/internal/models"
)

// DefaultHistoryLimit is used when ListCompletedSessions gets a non-positive limit.
const DefaultHistoryLimit = 10

const sessionColumns = `id, created_at, day_type, priority_bucket, exercises, time_slot, equipment,
	week_mode, feeling, sleep, pain, is_reroll, completed, feedback, completed_at, warnings`

// SaveSession inserts a new session and, in the same transaction, applies fn
// to the user state. A nil fn leaves the state untouched.
func (db *DB) SaveSession(ctx context.Context, s models.Session, fn func(*models.UserState) (bool, error)) (models.UserState, error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.UserState{}, fmt.Errorf("beginning session insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertSession(ctx, tx, s); err != nil {
		return models.UserState{}, err
	}
	var st models.UserState
	if fn != nil {
		if st, err = updateStateTx(ctx, tx, db.clock(), fn); err != nil {
			return models.UserState{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return models.UserState{}, fmt.Errorf("committing session: %w", err)
	}
	return st, nil
}

func insertSession(ctx context.Context, q querier, s models.Session) error {
	exercises, err := json.Marshal(s.Exercises)
	if err != nil {
		return fmt.Errorf("encoding session exercises: %w", err)
	}
	warnings := s.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	var feedback *string
	if s.Feedback != nil {
		v := string(*s.Feedback)
		feedback = &v
	}

	_, err = q.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, s.ID, s.CreatedAt, string(s.DayType), string(s.PriorityBucket), exercises,
		string(s.TimeSlot), string(s.Equipment), string(s.WeekMode), string(s.Feeling),
		string(s.Sleep), string(s.Pain), s.IsReroll, s.Completed, feedback, s.CompletedAt, warnings)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// GetSession returns one session or models.ErrNotFound.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (models.Session, error) {
	s, err := scanSession(db.Pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("querying session: %w", err)
	}
	return s, nil
}

// ReplaceSessionExercises overwrites the exercise list of an open session.
func (db *DB) ReplaceSessionExercises(ctx context.Context, id uuid.UUID, exercises []models.SessionExercise) error {
	raw, err := json.Marshal(exercises)
	if err != nil {
		return fmt.Errorf("encoding session exercises: %w", err)
	}
	var completed bool
	err = db.Pool.QueryRow(ctx, `
		UPDATE sessions SET exercises = CASE WHEN completed THEN exercises ELSE $2::jsonb END
		WHERE id = $1
		RETURNING completed
	`, id, raw).Scan(&completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating session exercises: %w", err)
	}
	if completed {
		return fmt.Errorf("session %s: %w", id, models.ErrAlreadyCompleted)
	}
	return nil
}

// CompleteSession records feedback on an open session and applies fn to the
// user state in one transaction. Completion is terminal: a second call returns
// models.ErrAlreadyCompleted. When fn fails the session stays open.
func (db *DB) CompleteSession(ctx context.Context, id uuid.UUID, feedback models.Feedback, at time.Time,
	fn func(*models.UserState) (bool, error)) (models.UserState, error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.UserState{}, fmt.Errorf("beginning session completion: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE sessions SET completed = TRUE, feedback = $2, completed_at = $3
		WHERE id = $1 AND NOT completed
	`, id, string(feedback), at)
	if err != nil {
		return models.UserState{}, fmt.Errorf("completing session: %w", err)
	}
	if tag.RowsAffected() != 1 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return models.UserState{}, fmt.Errorf("checking session: %w", err)
		}
		if !exists {
			return models.UserState{}, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
		}
		return models.UserState{}, fmt.Errorf("session %s: %w", id, models.ErrAlreadyCompleted)
	}

	var st models.UserState
	if fn != nil {
		if st, err = updateStateTx(ctx, tx, db.clock(), fn); err != nil {
			return models.UserState{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return models.UserState{}, fmt.Errorf("committing session completion: %w", err)
	}
	return st, nil
}

// ListCompletedSessions returns completed sessions newest first.
func (db *DB) ListCompletedSessions(ctx context.Context, limit int) ([]models.Session, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE completed
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	out := []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (models.Session, error) {
	var (
		s                                          models.Session
		dayType, bucket, slot, equipment, weekMode string
		feeling, sleep, pain                       string
		exercises                                  []byte
		feedback                                   *string
		warnings                                   []string
	)
	err := row.Scan(&s.ID, &s.CreatedAt, &dayType, &bucket, &exercises, &slot, &equipment,
		&weekMode, &feeling, &sleep, &pain, &s.IsReroll, &s.Completed, &feedback, &s.CompletedAt, &warnings)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(exercises, &s.Exercises); err != nil {
		return s, fmt.Errorf("decoding session exercises: %w", err)
	}
	s.DayType = models.DayType(dayType)
	s.PriorityBucket = models.Category(bucket)
	s.TimeSlot = models.TimeSlot(slot)
	s.Equipment = models.Equipment(equipment)
	s.WeekMode = models.WeekMode(weekMode)
	s.Feeling = models.Feeling(feeling)
	s.Sleep = models.Sleep(sleep)
	s.Pain = models.Pain(pain)
	if feedback != nil {
		fb := models.Feedback(*feedback)
		s.Feedback = &fb
	}
	if len(warnings) > 0 {
		s.Warnings = warnings
	}
	return s, nil
}
