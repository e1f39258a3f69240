package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claude/trainday/internal/catalog"
	"github.com/claude/trainday/internal/engine"
	"github.com/claude/trainday/internal/models"
	"github.com/claude/trainday/internal/storage/sqlitestore"
	"github.com/claude/trainday/internal/training"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlitestore.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	c, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	if err := catalog.Seed(context.Background(), store, c, log); err != nil {
		t.Fatal(err)
	}

	now := func() time.Time { return time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC) }
	store.SetClock(now)
	svc := training.NewService(store, engine.DefaultPolicy(), log,
		training.WithRand(engine.NewRand(42)), training.WithClock(now))
	return New(svc, testAPIKey, "test", log)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			if err != nil {
				t.Fatal(err)
			}
			raw = string(b)
		}
		rd = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v (body %q)", err, rec.Body.String())
	}
	return v
}

var checkIn = models.Questionnaire{
	Feeling:       models.FeelingGreat,
	Sleep:         models.SleepGood,
	Pain:          models.PainNone,
	TimeAvailable: models.Slot30to45,
	Equipment:     models.EquipmentMinimal,
}

// TestHealth verifies the root endpoint reports the version.
func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["version"] != "test" {
		t.Errorf("version = %q, want %q", body["version"], "test")
	}
}

// TestHandleMeDefault verifies /me returns the dev identity when no
// Tailscale client is configured.
func TestHandleMeDefault(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/me", nil)
	info := decode[UserInfo](t, rec)
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
}

// TestGenerateCompleteFlow walks a session through generate, fetch,
// complete and history.
func TestGenerateCompleteFlow(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/generate", checkIn)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body %s", rec.Code, rec.Body)
	}
	session := decode[models.Session](t, rec)
	if len(session.Exercises) != 4 {
		t.Errorf("exercises = %d, want 4", len(session.Exercises))
	}
	if session.PriorityBucket != models.CategorySquat {
		t.Errorf("priority bucket = %q, want squat", session.PriorityBucket)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+session.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/complete", map[string]any{"session_id": session.ID, "feedback": "good"})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body %s", rec.Code, rec.Body)
	}
	result := decode[models.CompleteResult](t, rec)
	if result.NextPriorityBucket != models.CategoryPull {
		t.Errorf("next bucket = %q, want pull", result.NextPriorityBucket)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/complete", map[string]any{"session_id": session.ID, "feedback": "good"})
	if rec.Code != http.StatusConflict {
		t.Errorf("second complete status = %d, want 409", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/history?limit=5", nil)
	history := decode[[]models.Session](t, rec)
	if len(history) != 1 || history[0].ID != session.ID {
		t.Errorf("history = %+v", history)
	}
}

// TestErrorMapping verifies each error kind maps to its status code.
func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	badCheckIn := checkIn
	badCheckIn.Feeling = "tired"

	// bw_batwing_hold is the only bodyweight pull, so swapping it has no alternative.
	pullDay := checkIn
	pullDay.Equipment = models.EquipmentBodyweight
	pullDay.OverrideBucket = models.CategoryPull
	rec := do(t, s, http.MethodPost, "/api/v1/generate", pullDay)
	pullSession := decode[models.Session](t, rec)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/v1/generate", "{", http.StatusBadRequest},
		{"invalid answer", http.MethodPost, "/api/v1/generate", badCheckIn, http.StatusBadRequest},
		{"unknown category", http.MethodGet, "/api/v1/exercises/legs", nil, http.StatusBadRequest},
		{"bad history limit", http.MethodGet, "/api/v1/history?limit=zero", nil, http.StatusBadRequest},
		{"bad session id", http.MethodGet, "/api/v1/sessions/nope", nil, http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/api/v1/sessions/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown exercise", http.MethodGet, "/api/v1/exercise/nope", nil, http.StatusNotFound},
		{"complete unknown", http.MethodPost, "/api/v1/complete", map[string]any{"session_id": uuid.New(), "feedback": "good"}, http.StatusNotFound},
		{"no alternative", http.MethodPost, "/api/v1/swap", training.SwapRequest{SessionID: pullSession.ID, ExerciseID: "bw_batwing_hold"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
			if body := decode[map[string]string](t, rec); body["error"] == "" {
				t.Error("missing error message")
			}
		})
	}
}

// TestRerollPreserves verifies pinned day type and bucket survive a reroll.
func TestRerollPreserves(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{
		"feeling": "ok", "sleep": "good", "pain": "none",
		"time_available": "20-30", "equipment": "home",
		"preserve_day_type": "hard", "preserve_priority_bucket": "pull",
	}
	rec := do(t, s, http.MethodPost, "/api/v1/reroll", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	session := decode[models.Session](t, rec)
	if session.DayType != models.DayHard || session.PriorityBucket != models.CategoryPull {
		t.Errorf("day/bucket = %s/%s, want hard/pull", session.DayType, session.PriorityBucket)
	}
	if !session.IsReroll {
		t.Error("is_reroll should be set")
	}
}

// TestSettingsAndBenchmarks verifies the PUT endpoints persist their changes.
func TestSettingsAndBenchmarks(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/api/v1/settings", map[string]any{"power_frequency": "weekly"})
	if rec.Code != http.StatusOK {
		t.Fatalf("settings status = %d, body %s", rec.Code, rec.Body)
	}
	st := decode[models.UserState](t, do(t, s, http.MethodGet, "/api/v1/state", nil))
	if st.PowerFrequency != models.PowerWeekly {
		t.Errorf("power_frequency = %q, want weekly", st.PowerFrequency)
	}

	rec = do(t, s, http.MethodPut, "/api/v1/settings", map[string]any{"week_mode": "C"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid week mode status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodPut, "/api/v1/benchmarks", map[string]any{"pullup_max": 10})
	if rec.Code != http.StatusOK {
		t.Fatalf("benchmarks status = %d", rec.Code)
	}
	b := decode[models.Benchmarks](t, do(t, s, http.MethodGet, "/api/v1/benchmarks", nil))
	if b.PullupMax == nil || *b.PullupMax != 10 {
		t.Errorf("pullup_max = %v, want 10", b.PullupMax)
	}
}

// TestCatalogEndpoints verifies listing and lookup of exercises and protocols.
func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t)

	crawls := decode[[]models.Exercise](t, do(t, s, http.MethodGet, "/api/v1/exercises/crawl", nil))
	if len(crawls) == 0 {
		t.Fatal("no crawl exercises")
	}
	for _, ex := range crawls {
		if ex.Category != models.CategoryCrawl {
			t.Errorf("%s has category %s", ex.ID, ex.Category)
		}
	}

	all := decode[[]models.Exercise](t, do(t, s, http.MethodGet, "/api/v1/exercises", nil))
	if len(all) <= len(crawls) {
		t.Errorf("full list (%d) should exceed crawl list (%d)", len(all), len(crawls))
	}

	p := decode[models.Protocol](t, do(t, s, http.MethodGet, "/api/v1/protocols/carry_distance", nil))
	if p.PrescriptionType != models.PrescriptionCarryTime {
		t.Errorf("carry_distance type = %q", p.PrescriptionType)
	}
}

// TestResetRequiresAPIKey verifies the reset endpoint is protected.
func TestResetRequiresAPIKey(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/reset", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong key status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key status = %d, want 200", rec.Code)
	}
}

// TestSetMCP verifies a mounted MCP handler receives /mcp traffic.
func TestSetMCP(t *testing.T) {
	s := newTestServer(t)
	s.SetMCP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := do(t, s, http.MethodPost, "/mcp", "{}")
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}
