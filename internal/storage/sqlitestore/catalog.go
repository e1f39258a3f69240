package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/trainday/internal/models"
)

const exerciseColumns = `id, name, category, equipment, bilateral, is_anchor, prescription_type, is_power, protocol_ids`

const protocolColumns = `id, name, prescription_type, description, sets, reps, hold_time, time, rest, tempo, is_easy_day`

// UpsertExercise inserts or replaces a catalog exercise.
func (s *Store) UpsertExercise(ctx context.Context, ex models.Exercise) error {
	equipment, err := encodeJSON(ex.Equipment)
	if err != nil {
		return fmt.Errorf("encoding equipment: %w", err)
	}
	protocolIDs := ex.ProtocolIDs
	if protocolIDs == nil {
		protocolIDs = []string{}
	}
	ids, err := encodeJSON(protocolIDs)
	if err != nil {
		return fmt.Errorf("encoding protocol ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO exercises (`+exerciseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ex.ID, ex.Name, string(ex.Category), equipment, ex.Bilateral,
		ex.IsAnchor, string(ex.PrescriptionType), ex.IsPower, ids)
	if err != nil {
		return fmt.Errorf("upserting exercise: %w", err)
	}
	return nil
}

// GetExercise returns one exercise or models.ErrNotFound.
func (s *Store) GetExercise(ctx context.Context, id string) (models.Exercise, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, id)
	ex, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Exercise{}, fmt.Errorf("exercise %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Exercise{}, fmt.Errorf("querying exercise: %w", err)
	}
	return ex, nil
}

// ListExercises returns exercises matching the filter ordered by category and id.
func (s *Store) ListExercises(ctx context.Context, f models.ExerciseFilter) ([]models.Exercise, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercises
		WHERE (?1 = '' OR category = ?1)
		ORDER BY category, id
	`, string(f.Category))
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var out []models.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		// Equipment lives in a JSON column; filter in Go.
		if f.Match(ex) {
			out = append(out, ex)
		}
	}
	return out, rows.Err()
}

// CountExercises returns the catalog size.
func (s *Store) CountExercises(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exercises`).Scan(&n)
	return n, err
}

// UpsertProtocol inserts or replaces a protocol.
func (s *Store) UpsertProtocol(ctx context.Context, p models.Protocol) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO protocols (`+protocolColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, string(p.PrescriptionType), p.Description,
		p.Sets, p.Reps, p.HoldTime, p.Time, p.Rest, p.Tempo, p.IsEasyDay)
	if err != nil {
		return fmt.Errorf("upserting protocol: %w", err)
	}
	return nil
}

// GetProtocol returns one protocol or models.ErrNotFound.
func (s *Store) GetProtocol(ctx context.Context, id string) (models.Protocol, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+protocolColumns+` FROM protocols WHERE id = ?`, id)
	p, err := scanProtocol(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Protocol{}, fmt.Errorf("protocol %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Protocol{}, fmt.Errorf("querying protocol: %w", err)
	}
	return p, nil
}

// ListProtocols returns protocols matching the filter ordered by type and id.
func (s *Store) ListProtocols(ctx context.Context, f models.ProtocolFilter) ([]models.Protocol, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+protocolColumns+`
		FROM protocols
		WHERE (?1 = '' OR prescription_type = ?1)
		ORDER BY prescription_type, id
	`, string(f.PrescriptionType))
	if err != nil {
		return nil, fmt.Errorf("querying protocols: %w", err)
	}
	defer rows.Close()

	var out []models.Protocol
	for rows.Next() {
		p, err := scanProtocol(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning protocol: %w", err)
		}
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExercise(row scanner) (models.Exercise, error) {
	var (
		ex                       models.Exercise
		category, prescType      string
		equipment, protocolIDRaw string
	)
	err := row.Scan(&ex.ID, &ex.Name, &category, &equipment, &ex.Bilateral,
		&ex.IsAnchor, &prescType, &ex.IsPower, &protocolIDRaw)
	if err != nil {
		return ex, err
	}
	ex.Category = models.Category(category)
	ex.PrescriptionType = models.PrescriptionType(prescType)
	if err := json.Unmarshal([]byte(equipment), &ex.Equipment); err != nil {
		return ex, fmt.Errorf("decoding equipment: %w", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(protocolIDRaw), &ids); err != nil {
		return ex, fmt.Errorf("decoding protocol ids: %w", err)
	}
	if len(ids) > 0 {
		ex.ProtocolIDs = ids
	}
	return ex, nil
}

func scanProtocol(row scanner) (models.Protocol, error) {
	var (
		p         models.Protocol
		prescType string
	)
	err := row.Scan(&p.ID, &p.Name, &prescType, &p.Description,
		&p.Sets, &p.Reps, &p.HoldTime, &p.Time, &p.Rest, &p.Tempo, &p.IsEasyDay)
	p.PrescriptionType = models.PrescriptionType(prescType)
	return p, err
}
