package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/trainday/internal/models"
)

// Store is the write side of a catalog store.
type Store interface {
	UpsertExercise(ctx context.Context, ex models.Exercise) error
	UpsertProtocol(ctx context.Context, p models.Protocol) error
	CountExercises(ctx context.Context) (int, error)
}

// Seed upserts every protocol and exercise in c. Protocols go first so
// custom protocol references resolve.
func Seed(ctx context.Context, store Store, c *Catalog, log *slog.Logger) error {
	for _, p := range c.Protocols {
		if err := store.UpsertProtocol(ctx, p); err != nil {
			return fmt.Errorf("seeding protocol %s: %w", p.ID, err)
		}
	}
	for _, ex := range c.Exercises {
		if err := store.UpsertExercise(ctx, ex); err != nil {
			return fmt.Errorf("seeding exercise %s: %w", ex.ID, err)
		}
	}
	log.Info("catalog seeded", "exercises", len(c.Exercises), "protocols", len(c.Protocols))
	return nil
}

// EnsureSeeded seeds c when force is set or the store has no exercises.
func EnsureSeeded(ctx context.Context, store Store, c *Catalog, force bool, log *slog.Logger) error {
	if !force {
		n, err := store.CountExercises(ctx)
		if err != nil {
			return fmt.Errorf("counting exercises: %w", err)
		}
		if n > 0 {
			log.Debug("catalog already present", "exercises", n)
			return nil
		}
	}
	return Seed(ctx, store, c, log)
}
