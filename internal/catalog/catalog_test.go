package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/claude/trainday/internal/models"
)

// TestDefaultCatalog verifies the embedded library parses, validates and
// covers every bucket and prescription type.
func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default(): %v", err)
	}
	if len(c.Exercises) < 40 {
		t.Errorf("exercises = %d, want at least 40", len(c.Exercises))
	}

	perCategory := map[models.Category]int{}
	for _, ex := range c.Exercises {
		perCategory[ex.Category]++
	}
	for _, cat := range models.Categories {
		if perCategory[cat] == 0 {
			t.Errorf("no exercises for category %s", cat)
		}
	}

	type pools struct{ easy, hard int }
	perType := map[models.PrescriptionType]*pools{}
	for _, p := range c.Protocols {
		if perType[p.PrescriptionType] == nil {
			perType[p.PrescriptionType] = &pools{}
		}
		if p.IsEasyDay {
			perType[p.PrescriptionType].easy++
		} else {
			perType[p.PrescriptionType].hard++
		}
	}
	for _, pt := range []models.PrescriptionType{
		models.PrescriptionKBStrength, models.PrescriptionBWDynamic, models.PrescriptionIsometricHold,
		models.PrescriptionCarryTime, models.PrescriptionCrawlTime,
	} {
		if perType[pt] == nil || perType[pt].easy == 0 || perType[pt].hard == 0 {
			t.Errorf("%s: want both easy and non-easy protocols, got %+v", pt, perType[pt])
		}
	}
	if perType[models.PrescriptionPowerSwing] == nil || perType[models.PrescriptionPowerSwing].hard == 0 {
		t.Error("no power protocols")
	}
}

// TestDefaultCatalogPowerExercise verifies kb_swing is the only power movement
// and carries its custom protocols.
func TestDefaultCatalogPowerExercise(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	var power []models.Exercise
	for _, ex := range c.Exercises {
		if ex.IsPower {
			power = append(power, ex)
		}
	}
	if len(power) != 1 || power[0].ID != "kb_swing" {
		t.Fatalf("power exercises = %v, want [kb_swing]", power)
	}
	want := []string{"swing_on_the_minute", "swing_sets_across"}
	if diff := cmp.Diff(want, power[0].ProtocolIDs); diff != "" {
		t.Errorf("kb_swing protocol ids (-want +got):\n%s", diff)
	}
}

const smallYAML = `
categories:
  - category: carry
    exercises:
      - id: farmer_carry
        name: "Farmer Carry"
        equipment: [home, minimal]
        bilateral: true
        is_anchor: true
        prescription_type: CARRY_TIME
protocols:
  - prescription_type: CARRY_TIME
    protocols:
      - id: carry_distance
        name: "Distance"
        sets: "3-4"
        reps: "20-40m"
        rest: "60s"
`

func TestLoadFlattensGroups(t *testing.T) {
	c, err := Load(strings.NewReader(smallYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantEx := []models.Exercise{{
		ID:               "farmer_carry",
		Name:             "Farmer Carry",
		Category:         models.CategoryCarry,
		Equipment:        []models.Equipment{models.EquipmentHome, models.EquipmentMinimal},
		Bilateral:        true,
		IsAnchor:         true,
		PrescriptionType: models.PrescriptionCarryTime,
	}}
	if diff := cmp.Diff(wantEx, c.Exercises); diff != "" {
		t.Errorf("exercises (-want +got):\n%s", diff)
	}
	wantProto := []models.Protocol{{
		ID:               "carry_distance",
		Name:             "Distance",
		PrescriptionType: models.PrescriptionCarryTime,
		Template:         models.Template{Sets: "3-4", Reps: "20-40m", Rest: "60s"},
	}}
	if diff := cmp.Diff(wantProto, c.Protocols); diff != "" {
		t.Errorf("protocols (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(smallYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(c.Exercises) != 1 || len(c.Protocols) != 1 {
		t.Errorf("got %d exercises, %d protocols", len(c.Exercises), len(c.Protocols))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestLoadRejectsInvalid verifies each validation rule with a minimal bad document.
func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"unknown category", strings.Replace(smallYAML, "category: carry", "category: legs", 1)},
		{"unknown prescription", strings.Replace(smallYAML, "prescription_type: CARRY_TIME\n", "prescription_type: CARDIO\n", 1)},
		{"unknown equipment", strings.Replace(smallYAML, "[home, minimal]", "[gym]", 1)},
		{"no equipment", strings.Replace(smallYAML, "[home, minimal]", "[]", 1)},
		{"unknown protocol reference", strings.Replace(smallYAML, "is_anchor: true", "is_anchor: true\n        protocol_ids: [nope]", 1)},
		{"duplicate protocol", smallYAML + `      - id: carry_distance
        name: "Again"
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.yaml))
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("Load() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	bad := strings.Replace(smallYAML, "bilateral: true", "bilateral: true\n        weight: 24", 1)
	if _, err := Load(strings.NewReader(bad)); err == nil {
		t.Error("expected error for unknown field")
	}
}

type memStore struct {
	exercises map[string]models.Exercise
	protocols map[string]models.Protocol
	order     []string
}

func newMemStore() *memStore {
	return &memStore{exercises: map[string]models.Exercise{}, protocols: map[string]models.Protocol{}}
}

func (m *memStore) UpsertExercise(_ context.Context, ex models.Exercise) error {
	m.exercises[ex.ID] = ex
	m.order = append(m.order, "exercise:"+ex.ID)
	return nil
}

func (m *memStore) UpsertProtocol(_ context.Context, p models.Protocol) error {
	m.protocols[p.ID] = p
	m.order = append(m.order, "protocol:"+p.ID)
	return nil
}

func (m *memStore) CountExercises(context.Context) (int, error) {
	return len(m.exercises), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestEnsureSeeded verifies seeding happens on an empty store, is skipped on
// a populated one and can be forced.
func TestEnsureSeeded(t *testing.T) {
	ctx := context.Background()
	c, err := Load(strings.NewReader(smallYAML))
	if err != nil {
		t.Fatal(err)
	}
	store := newMemStore()

	if err := EnsureSeeded(ctx, store, c, false, discardLogger()); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	want := []string{"protocol:carry_distance", "exercise:farmer_carry"}
	if diff := cmp.Diff(want, store.order); diff != "" {
		t.Errorf("seed order (-want +got):\n%s", diff)
	}

	if err := EnsureSeeded(ctx, store, c, false, discardLogger()); err != nil {
		t.Fatal(err)
	}
	if len(store.order) != 2 {
		t.Errorf("populated store was reseeded: %v", store.order)
	}

	if err := EnsureSeeded(ctx, store, c, true, discardLogger()); err != nil {
		t.Fatal(err)
	}
	if len(store.order) != 4 {
		t.Errorf("forced seed did not run: %v", store.order)
	}
}
