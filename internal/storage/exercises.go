package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/trainday/internal/models"
)

const exerciseColumns = `id, name, category, equipment, bilateral, is_anchor, prescription_type, is_power, protocol_ids`

// UpsertExercise inserts or replaces a catalog exercise.
func (db *DB) UpsertExercise(ctx context.Context, ex models.Exercise) error {
	protocolIDs := ex.ProtocolIDs
	if protocolIDs == nil {
		protocolIDs = []string{}
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO exercises (`+exerciseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			equipment = EXCLUDED.equipment,
			bilateral = EXCLUDED.bilateral,
			is_anchor = EXCLUDED.is_anchor,
			prescription_type = EXCLUDED.prescription_type,
			is_power = EXCLUDED.is_power,
			protocol_ids = EXCLUDED.protocol_ids
	`, ex.ID, ex.Name, string(ex.Category), toStrings(ex.Equipment), ex.Bilateral,
		ex.IsAnchor, string(ex.PrescriptionType), ex.IsPower, protocolIDs)
	if err != nil {
		return fmt.Errorf("upserting exercise: %w", err)
	}
	return nil
}

// GetExercise returns one exercise or models.ErrNotFound.
func (db *DB) GetExercise(ctx context.Context, id string) (models.Exercise, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id)
	ex, err := scanExercise(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Exercise{}, fmt.Errorf("exercise %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Exercise{}, fmt.Errorf("querying exercise: %w", err)
	}
	return ex, nil
}

// ListExercises returns exercises matching the filter ordered by category and id.
func (db *DB) ListExercises(ctx context.Context, f models.ExerciseFilter) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercises
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR $2 = ANY(equipment))
		ORDER BY category, id
	`, string(f.Category), string(f.Equipment))
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
		out = append(out, ex)
	}
	return out, rows.Err()
}

// CountExercises returns the catalog size.
func (db *DB) CountExercises(ctx context.Context) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM exercises`).Scan(&n)
	return n, err
}

func scanExercise(row pgx.Row) (models.Exercise, error) {
	var (
		ex          models.Exercise
		category    string
		equipment   []string
		prescType   string
		protocolIDs []string
	)
	err := row.Scan(&ex.ID, &ex.Name, &category, &equipment, &ex.Bilateral,
		&ex.IsAnchor, &prescType, &ex.IsPower, &protocolIDs)
	if err != nil {
		return ex, err
	}
	ex.Category = models.Category(category)
	ex.Equipment = fromStrings[models.Equipment](equipment)
	ex.PrescriptionType = models.PrescriptionType(prescType)
	if len(protocolIDs) > 0 {
		ex.ProtocolIDs = protocolIDs
	}
	return ex, nil
}
