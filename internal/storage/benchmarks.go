package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/trainday/internal/models"
)

// GetBenchmarks returns the stored benchmarks or the defaults when none exist.
func (db *DB) GetBenchmarks(ctx context.Context) (models.Benchmarks, error) {
	b, err := scanBenchmarks(db.Pool.QueryRow(ctx, `
		SELECT press_bell_kg, press_reps, pushup_max, pullup_max, front_squat_bells_kg,
			front_squat_reps, hinge_bell_kg, hinge_reps, available_bells_minimal, updated_at
		FROM benchmarks WHERE id = 1
	`))
	if errors.Is(err, pgx.ErrNoRows) {
		def := models.DefaultBenchmarks()
		def.UpdatedAt = db.clock()
		return def, nil
	}
	if err != nil {
		return models.Benchmarks{}, fmt.Errorf("querying benchmarks: %w", err)
	}
	return b, nil
}

// UpdateBenchmarks applies u to the stored benchmarks and returns the result.
func (db *DB) UpdateBenchmarks(ctx context.Context, u models.BenchmarksUpdate) (models.Benchmarks, error) {
	b, err := db.GetBenchmarks(ctx)
	if err != nil {
		return models.Benchmarks{}, err
	}
	u.Apply(&b)
	b.UpdatedAt = db.clock()
	if b.AvailableBellsMinimal == nil {
		b.AvailableBellsMinimal = []int{}
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO benchmarks (id, press_bell_kg, press_reps, pushup_max, pullup_max, front_squat_bells_kg,
			front_squat_reps, hinge_bell_kg, hinge_reps, available_bells_minimal, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			press_bell_kg = EXCLUDED.press_bell_kg,
			press_reps = EXCLUDED.press_reps,
			pushup_max = EXCLUDED.pushup_max,
			pullup_max = EXCLUDED.pullup_max,
			front_squat_bells_kg = EXCLUDED.front_squat_bells_kg,
			front_squat_reps = EXCLUDED.front_squat_reps,
			hinge_bell_kg = EXCLUDED.hinge_bell_kg,
			hinge_reps = EXCLUDED.hinge_reps,
			available_bells_minimal = EXCLUDED.available_bells_minimal,
			updated_at = EXCLUDED.updated_at
	`, b.PressBellKg, b.PressReps, b.PushupMax, b.PullupMax, b.FrontSquatBellsKg,
		b.FrontSquatReps, b.HingeBellKg, b.HingeReps, b.AvailableBellsMinimal, b.UpdatedAt)
	if err != nil {
		return models.Benchmarks{}, fmt.Errorf("upserting benchmarks: %w", err)
	}
	return b, nil
}

func scanBenchmarks(row pgx.Row) (models.Benchmarks, error) {
	var b models.Benchmarks
	err := row.Scan(&b.PressBellKg, &b.PressReps, &b.PushupMax, &b.PullupMax, &b.FrontSquatBellsKg,
		&b.FrontSquatReps, &b.HingeBellKg, &b.HingeReps, &b.AvailableBellsMinimal, &b.UpdatedAt)
	return b, err
}
