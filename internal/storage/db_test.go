package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/claude/trainday/internal/models"
)

func TestStringConversions(t *testing.T) {
	eq := []models.Equipment{models.EquipmentHome, models.EquipmentBodyweight}
	raw := toStrings(eq)
	if diff := cmp.Diff([]string{"home", "bodyweight"}, raw); diff != "" {
		t.Errorf("toStrings (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(eq, fromStrings[models.Equipment](raw)); diff != "" {
		t.Errorf("fromStrings (-want +got):\n%s", diff)
	}
	if got := toStrings[models.Equipment](nil); got == nil || len(got) != 0 {
		t.Errorf("toStrings(nil) = %#v, want empty non-nil slice", got)
	}
}

// openTestDB connects to TRAINDAY_TEST_DATABASE_URL and starts from an empty
// state. The tests are skipped when it is unset.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TRAINDAY_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TRAINDAY_TEST_DATABASE_URL not set")
	}
	if err := RunMigrations(dsn); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	ctx := context.Background()
	db, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	return db
}

func TestPostgresCatalog(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	p := models.Protocol{
		ID: "test_swing_emom", Name: "Swing EMOM", PrescriptionType: models.PrescriptionPowerSwing,
		Template: models.Template{Sets: "10", Reps: "10"},
	}
	if err := db.UpsertProtocol(ctx, p); err != nil {
		t.Fatalf("UpsertProtocol: %v", err)
	}
	ex := models.Exercise{
		ID: "test_swing", Name: "Swing", Category: models.CategoryHinge,
		Equipment:        []models.Equipment{models.EquipmentHome, models.EquipmentMinimal},
		PrescriptionType: models.PrescriptionPowerSwing, IsPower: true, ProtocolIDs: []string{p.ID},
	}
	if err := db.UpsertExercise(ctx, ex); err != nil {
		t.Fatalf("UpsertExercise: %v", err)
	}

	got, err := db.GetExercise(ctx, ex.ID)
	if err != nil {
		t.Fatalf("GetExercise: %v", err)
	}
	if diff := cmp.Diff(ex, got); diff != "" {
		t.Errorf("exercise (-want +got):\n%s", diff)
	}

	minimal, err := db.ListExercises(ctx, models.ExerciseFilter{Category: models.CategoryHinge, Equipment: models.EquipmentMinimal})
	if err != nil {
		t.Fatalf("ListExercises: %v", err)
	}
	found := false
	for _, e := range minimal {
		found = found || e.ID == ex.ID
	}
	if !found {
		t.Errorf("minimal hinge list missing %s", ex.ID)
	}

	if _, err := db.GetProtocol(ctx, "test_missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetProtocol(missing) error = %v, want ErrNotFound", err)
	}
}

func TestPostgresSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)

	s := models.Session{
		ID: uuid.New(), CreatedAt: now, DayType: models.DayMedium, PriorityBucket: models.CategorySquat,
		Exercises: []models.SessionExercise{{ID: "kb_goblet_squat", Category: models.CategorySquat}},
		TimeSlot:  models.Slot20to30, Equipment: models.EquipmentHome, WeekMode: models.WeekModeA,
		Feeling: models.FeelingOK, Sleep: models.SleepGood, Pain: models.PainNone,
	}
	if _, err := db.SaveSession(ctx, s, nil); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	swapped := []models.SessionExercise{{ID: "kb_front_squat", Category: models.CategorySquat}}
	if err := db.ReplaceSessionExercises(ctx, s.ID, swapped); err != nil {
		t.Fatalf("ReplaceSessionExercises: %v", err)
	}
	boom := errors.New("disk full")
	if _, err := db.CompleteSession(ctx, s.ID, models.FeedbackGood, now, func(*models.UserState) (bool, error) {
		return false, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("failing completion error = %v, want boom", err)
	}
	if got, err := db.GetSession(ctx, s.ID); err != nil || got.Completed {
		t.Fatalf("session after failed completion = %+v, %v; want open", got, err)
	}
	st, err := db.CompleteSession(ctx, s.ID, models.FeedbackGood, now.Add(time.Hour), func(st *models.UserState) (bool, error) {
		st.NextPriorityBucket = models.CategoryPull
		return true, nil
	})
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if st.NextPriorityBucket != models.CategoryPull {
		t.Errorf("bucket = %s, want pull", st.NextPriorityBucket)
	}
	if _, err := db.CompleteSession(ctx, s.ID, models.FeedbackGood, now, nil); !errors.Is(err, models.ErrAlreadyCompleted) {
		t.Errorf("second completion error = %v, want ErrAlreadyCompleted", err)
	}
	if err := db.ReplaceSessionExercises(ctx, s.ID, nil); !errors.Is(err, models.ErrAlreadyCompleted) {
		t.Errorf("swap after completion error = %v, want ErrAlreadyCompleted", err)
	}
	if _, err := db.CompleteSession(ctx, uuid.New(), models.FeedbackGood, now, nil); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown session error = %v, want ErrNotFound", err)
	}

	history, err := db.ListCompletedSessions(ctx, 0)
	if err != nil {
		t.Fatalf("ListCompletedSessions: %v", err)
	}
	if len(history) != 1 || history[0].Exercises[0].ID != "kb_front_squat" || history[0].Feedback == nil {
		t.Errorf("history = %+v", history)
	}
}

func TestPostgresUpdateState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	st, err := db.UpdateState(ctx, func(st *models.UserState) (bool, error) {
		st.NextPriorityBucket = models.CategoryHinge
		st.CooldownCounter = 2
		return true, nil
	})
	if err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	if st.NextPriorityBucket != models.CategoryHinge {
		t.Errorf("bucket = %s", st.NextPriorityBucket)
	}

	boom := errors.New("boom")
	if _, err := db.UpdateState(ctx, func(st *models.UserState) (bool, error) {
		st.CooldownCounter = 0
		return true, boom
	}); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}

	got, err := db.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if got.CooldownCounter != 2 {
		t.Errorf("cooldown = %d, want 2 after failed update", got.CooldownCounter)
	}
}
