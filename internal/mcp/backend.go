package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/trainday/internal/models"
	"github.com/claude/trainday/internal/training"
)

// Backend is what the MCP tools call. *training.Service (local) and
// HTTPClient (remote via REST API) both satisfy it.
type Backend interface {
	Generate(ctx context.Context, q models.Questionnaire) (models.Session, error)
	Reroll(ctx context.Context, req training.RerollRequest) (models.Session, error)
	Swap(ctx context.Context, req training.SwapRequest) (models.Session, error)
	Complete(ctx context.Context, id uuid.UUID, feedback models.Feedback) (models.CompleteResult, error)
	State(ctx context.Context) (models.UserState, error)
	History(ctx context.Context, limit int) ([]models.Session, error)
	Exercises(ctx context.Context, category models.Category) ([]models.Exercise, error)
	Protocols(ctx context.Context) ([]models.Protocol, error)
}

// Compile-time check: *training.Service satisfies Backend.
var _ Backend = (*training.Service)(nil)
