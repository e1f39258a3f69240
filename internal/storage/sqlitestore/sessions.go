package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claude/trainday/internal/models"
)

// DefaultHistoryLimit is used when ListCompletedSessions gets a non-positive limit.
const DefaultHistoryLimit = 10

const sessionColumns = `id, created_at, day_type, priority_bucket, exercises, time_slot, equipment,
	week_mode, feeling, sleep, pain, is_reroll, completed, feedback, completed_at, warnings`

// SaveSession inserts a new session and, in the same transaction, applies fn
// to the user state. A nil fn leaves the state untouched.
func (s *Store) SaveSession(ctx context.Context, sess models.Session, fn func(*models.UserState) (bool, error)) (models.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.UserState{}, fmt.Errorf("beginning session insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertSession(ctx, tx, sess); err != nil {
		return models.UserState{}, err
	}
	var st models.UserState
	if fn != nil {
		if st, err = updateStateTx(ctx, tx, s.clock(), fn); err != nil {
			return models.UserState{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.UserState{}, fmt.Errorf("committing session: %w", err)
	}
	return st, nil
}

func insertSession(ctx context.Context, q execer, sess models.Session) error {
	exercises, err := encodeJSON(sess.Exercises)
	if err != nil {
		return fmt.Errorf("encoding session exercises: %w", err)
	}
	warnings := sess.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsRaw, err := encodeJSON(warnings)
	if err != nil {
		return fmt.Errorf("encoding warnings: %w", err)
	}
	var feedback sql.NullString
	if sess.Feedback != nil {
		feedback = sql.NullString{String: string(*sess.Feedback), Valid: true}
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sess.ID.String(), formatTime(sess.CreatedAt), string(sess.DayType), string(sess.PriorityBucket),
		exercises, string(sess.TimeSlot), string(sess.Equipment), string(sess.WeekMode),
		string(sess.Feeling), string(sess.Sleep), string(sess.Pain), sess.IsReroll, sess.Completed,
		feedback, formatNullTime(sess.CompletedAt), warningsRaw)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// GetSession returns one session or models.ErrNotFound.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (models.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id.String())
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("querying session: %w", err)
	}
	return sess, nil
}

// ReplaceSessionExercises overwrites the exercise list of an open session.
func (s *Store) ReplaceSessionExercises(ctx context.Context, id uuid.UUID, exercises []models.SessionExercise) error {
	raw, err := encodeJSON(exercises)
	if err != nil {
		return fmt.Errorf("encoding session exercises: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	completed, err := sessionCompleted(ctx, s.db, id)
	if err != nil {
		return err
	}
	if completed {
		return fmt.Errorf("session %s: %w", id, models.ErrAlreadyCompleted)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE sessions SET exercises = ? WHERE id = ?`, raw, id.String()); err != nil {
		return fmt.Errorf("updating session exercises: %w", err)
	}
	return nil
}

// CompleteSession records feedback on an open session and applies fn to the
// user state in one transaction. Completion is terminal: a second call returns
// models.ErrAlreadyCompleted. When fn fails the session stays open.
func (s *Store) CompleteSession(ctx context.Context, id uuid.UUID, feedback models.Feedback, at time.Time,
	fn func(*models.UserState) (bool, error)) (models.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.UserState{}, fmt.Errorf("beginning session completion: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE sessions SET completed = 1, feedback = ?, completed_at = ?
		WHERE id = ? AND completed = 0
	`, string(feedback), formatTime(at), id.String())
	if err != nil {
		return models.UserState{}, fmt.Errorf("completing session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		if _, err := sessionCompleted(ctx, tx, id); err != nil {
			return models.UserState{}, err
		}
		return models.UserState{}, fmt.Errorf("session %s: %w", id, models.ErrAlreadyCompleted)
	}

	var st models.UserState
	if fn != nil {
		if st, err = updateStateTx(ctx, tx, s.clock(), fn); err != nil {
			return models.UserState{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.UserState{}, fmt.Errorf("committing session completion: %w", err)
	}
	return st, nil
}

func sessionCompleted(ctx context.Context, q execer, id uuid.UUID) (bool, error) {
	var completed bool
	err := q.QueryRowContext(ctx, `SELECT completed FROM sessions WHERE id = ?`, id.String()).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("checking session: %w", err)
	}
	return completed, nil
}

// ListCompletedSessions returns completed sessions newest first.
func (s *Store) ListCompletedSessions(ctx context.Context, limit int) ([]models.Session, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE completed = 1
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	out := []models.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func scanSession(row scanner) (models.Session, error) {
	var (
		sess                                       models.Session
		id, createdAt                              string
		dayType, bucket, slot, equipment, weekMode string
		feeling, sleep, pain                       string
		exercises, warnings                        string
		feedback, completedAt                      sql.NullString
	)
	err := row.Scan(&id, &createdAt, &dayType, &bucket, &exercises, &slot, &equipment,
		&weekMode, &feeling, &sleep, &pain, &sess.IsReroll, &sess.Completed, &feedback, &completedAt, &warnings)
	if err != nil {
		return sess, err
	}
	if sess.ID, err = uuid.Parse(id); err != nil {
		return sess, fmt.Errorf("parsing session id: %w", err)
	}
	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return sess, err
	}
	if sess.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return sess, err
	}
	if err := json.Unmarshal([]byte(exercises), &sess.Exercises); err != nil {
		return sess, fmt.Errorf("decoding session exercises: %w", err)
	}
	var w []string
	if err := json.Unmarshal([]byte(warnings), &w); err != nil {
		return sess, fmt.Errorf("decoding warnings: %w", err)
	}
	if len(w) > 0 {
		sess.Warnings = w
	}
	sess.DayType = models.DayType(dayType)
	sess.PriorityBucket = models.Category(bucket)
	sess.TimeSlot = models.TimeSlot(slot)
	sess.Equipment = models.Equipment(equipment)
	sess.WeekMode = models.WeekMode(weekMode)
	sess.Feeling = models.Feeling(feeling)
	sess.Sleep = models.Sleep(sleep)
	sess.Pain = models.Pain(pain)
	if feedback.Valid {
		fb := models.Feedback(feedback.String)
		sess.Feedback = &fb
	}
	return sess, nil
}
