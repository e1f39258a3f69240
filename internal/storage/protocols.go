package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/trainday/internal/models"
)

const protocolColumns = `id, name, prescription_type, description, sets, reps, hold_time, time, rest, tempo, is_easy_day`

// UpsertProtocol inserts or replaces a protocol.
func (db *DB) UpsertProtocol(ctx context.Context, p models.Protocol) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO protocols (`+protocolColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			prescription_type = EXCLUDED.prescription_type,
			description = EXCLUDED.description,
			sets = EXCLUDED.sets,
			reps = EXCLUDED.reps,
			hold_time = EXCLUDED.hold_time,
			time = EXCLUDED.time,
			rest = EXCLUDED.rest,
			tempo = EXCLUDED.tempo,
			is_easy_day = EXCLUDED.is_easy_day
	`, p.ID, p.Name, string(p.PrescriptionType), p.Description,
		p.Sets, p.Reps, p.HoldTime, p.Time, p.Rest, p.Tempo, p.IsEasyDay)
	if err != nil {
		return fmt.Errorf("upserting protocol: %w", err)
	}
	return nil
}

// GetProtocol returns one protocol or models.ErrNotFound.
func (db *DB) GetProtocol(ctx context.Context, id string) (models.Protocol, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+protocolColumns+` FROM protocols WHERE id = $1`, id)
	p, err := scanProtocol(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Protocol{}, fmt.Errorf("protocol %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Protocol{}, fmt.Errorf("querying protocol: %w", err)
	}
	return p, nil
}

// ListProtocols returns protocols matching the filter ordered by type and id.
func (db *DB) ListProtocols(ctx context.Context, f models.ProtocolFilter) ([]models.Protocol, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+protocolColumns+`
		FROM protocols
		WHERE ($1 = '' OR prescription_type = $1)
		  AND ($2::boolean IS NULL OR is_easy_day = $2)
		ORDER BY prescription_type, id
	`, string(f.PrescriptionType), f.EasyDay)
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
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProtocol(row pgx.Row) (models.Protocol, error) {
	var (
		p         models.Protocol
		prescType string
	)
	err := row.Scan(&p.ID, &p.Name, &prescType, &p.Description,
		&p.Sets, &p.Reps, &p.HoldTime, &p.Time, &p.Rest, &p.Tempo, &p.IsEasyDay)
	p.PrescriptionType = models.PrescriptionType(prescType)
	return p, err
}
