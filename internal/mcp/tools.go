package mcp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/trainday/internal/models"
	"github.com/claude/trainday/internal/training"
)

// questionnaireOptions are the check-in arguments shared by generate and reroll.
func questionnaireOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("feeling", mcp.Required(), mcp.Description("How the user feels today"), mcp.Enum("bad", "ok", "great")),
		mcp.WithString("sleep", mcp.Required(), mcp.Description("Last night's sleep"), mcp.Enum("bad", "good")),
		mcp.WithString("pain", mcp.Required(), mcp.Description("Any pain or niggles"), mcp.Enum("none", "present")),
		mcp.WithString("time_available", mcp.Required(), mcp.Description("Minutes available"), mcp.Enum("20-30", "30-45", "45-60")),
		mcp.WithString("equipment", mcp.Required(), mcp.Description("home = full kettlebell set, minimal = one bell, bodyweight = none"), mcp.Enum("home", "minimal", "bodyweight")),
		mcp.WithString("override_bucket", mcp.Description("Force the priority movement instead of the rotation"), mcp.Enum("squat", "pull", "hinge", "push")),
	}
}

// --- Tool definitions ---

var toolGenerateSession = mcp.NewTool("generate_session", append([]mcp.ToolOption{
	mcp.WithDescription("Generate today's workout from the check-in. Any bad answer forces an easy day and starts a cooldown. Returns the session with its id, day type, priority bucket and prescribed exercises."),
}, questionnaireOptions()...)...)

var toolRerollSession = mcp.NewTool("reroll_session", append([]mcp.ToolOption{
	mcp.WithDescription("Generate an alternative session for the same check-in, optionally keeping the day type or priority bucket of the previous one."),
	mcp.WithString("preserve_day_type", mcp.Description("Keep this day type"), mcp.Enum("easy", "medium", "hard")),
	mcp.WithString("preserve_priority_bucket", mcp.Description("Keep this priority bucket"), mcp.Enum("squat", "pull", "hinge", "push")),
}, questionnaireOptions()...)...)

var toolSwapExercise = mcp.NewTool("swap_exercise",
	mcp.WithDescription("Replace one exercise in an uncompleted session with another from the same category that fits the session's equipment."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id returned by generate_session")),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Id of the exercise to replace")),
)

var toolCompleteSession = mcp.NewTool("complete_session",
	mcp.WithDescription("Mark a session as done. Advances the rotation, counts down the cooldown and records power work. A session can only be completed once."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	mcp.WithString("feedback", mcp.Required(), mcp.Description("not_good clears any priority override"), mcp.Enum("good", "not_good")),
)

var toolGetState = mcp.NewTool("get_state",
	mcp.WithDescription("Current training state: next priority bucket, override, week mode, cooldown, last first exercise and last power session."),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("Most recent completed sessions, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 10.")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List catalog exercises, optionally for one category."),
	mcp.WithString("category", mcp.Description("Movement category"), mcp.Enum("squat", "hinge", "push", "pull", "carry", "crawl")),
)

// --- Tool handlers ---

func questionnaireFrom(req mcp.CallToolRequest) (models.Questionnaire, error) {
	q := models.Questionnaire{OverrideBucket: models.Category(req.GetString("override_bucket", ""))}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"feeling", (*string)(&q.Feeling)},
		{"sleep", (*string)(&q.Sleep)},
		{"pain", (*string)(&q.Pain)},
		{"time_available", (*string)(&q.TimeAvailable)},
		{"equipment", (*string)(&q.Equipment)},
	} {
		v, err := req.RequireString(f.name)
		if err != nil {
			return q, errors.New(f.name + " parameter is required")
		}
		*f.dst = v
	}
	return q, nil
}

func sessionIDFrom(req mcp.CallToolRequest) (uuid.UUID, error) {
	raw, err := req.RequireString("session_id")
	if err != nil {
		return uuid.Nil, errors.New("session_id parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("session_id is not a valid id")
	}
	return id, nil
}

// failure turns a backend error into a tool error. Domain errors are shown
// to the model as-is; anything else is logged and reported generically.
func (h *handlers) failure(tool string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrNoCandidates),
		errors.Is(err, models.ErrAlreadyCompleted):
		return mcp.NewToolResultError(err.Error())
	}
	h.log.Error("mcp tool failed", "tool", tool, "error", err)
	return mcp.NewToolResultError("request failed: " + err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}

func (h *handlers) generateSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := questionnaireFrom(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := h.b.Generate(ctx, q)
	if err != nil {
		return h.failure("generate_session", err), nil
	}
	return jsonResult(session), nil
}

func (h *handlers) rerollSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := questionnaireFrom(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := h.b.Reroll(ctx, training.RerollRequest{
		Questionnaire:          q,
		PreserveDayType:        models.DayType(req.GetString("preserve_day_type", "")),
		PreservePriorityBucket: models.Category(req.GetString("preserve_priority_bucket", "")),
	})
	if err != nil {
		return h.failure("reroll_session", err), nil
	}
	return jsonResult(session), nil
}

func (h *handlers) swapExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionIDFrom(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	session, err := h.b.Swap(ctx, training.SwapRequest{SessionID: id, ExerciseID: exerciseID})
	if err != nil {
		return h.failure("swap_exercise", err), nil
	}
	return jsonResult(session), nil
}

func (h *handlers) completeSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionIDFrom(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	feedback, err := req.RequireString("feedback")
	if err != nil {
		return mcp.NewToolResultError("feedback parameter is required"), nil
	}

	result, err := h.b.Complete(ctx, id, models.Feedback(feedback))
	if err != nil {
		return h.failure("complete_session", err), nil
	}
	return jsonResult(result), nil
}

func (h *handlers) getState(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := h.b.State(ctx)
	if err != nil {
		return h.failure("get_state", err), nil
	}
	return jsonResult(st), nil
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 0)
	if limit < 0 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}

	sessions, err := h.b.History(ctx, limit)
	if err != nil {
		return h.failure("get_history", err), nil
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return jsonResult(sessions), nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.b.Exercises(ctx, models.Category(req.GetString("category", "")))
	if err != nil {
		return h.failure("list_exercises", err), nil
	}
	return jsonResult(exercises), nil
}
