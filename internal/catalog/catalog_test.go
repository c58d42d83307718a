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
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
)

const smallYAML = `
exercises:
  - title: Dumbbell Curl
    body_part: Biceps
    equipment: Dumbbells
  - slug: chin-up
    title: Chin-Up
    body_part: biceps
    pattern: pull
    equipment: bodyweight
    compound: true
`

// TestDefaultCoversEveryBodyPart verifies the built-in catalog can fill a
// bodyweight-only routine for every body part.
func TestDefaultCoversEveryBodyPart(t *testing.T) {
	c := Default()
	if c.Len() == 0 {
		t.Fatal("default catalog is empty")
	}
	parts := []string{
		coach.BodyChest, coach.BodyBack, coach.BodyShoulders, coach.BodyBiceps, coach.BodyTriceps,
		coach.BodyQuads, coach.BodyHamstrings, coach.BodyGlutes, coach.BodyCalves, coach.BodyCore,
	}
	for _, p := range parts {
		got, err := c.Find(context.Background(), coach.ExerciseQuery{
			BodyParts: []string{p},
			Equipment: []string{coach.EquipmentBodyweight},
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) == 0 {
			t.Errorf("no bodyweight exercise for %s", p)
		}
	}
}

// TestParseNormalizes checks slug generation, lower-casing and the default pattern.
func TestParseNormalizes(t *testing.T) {
	c, err := Parse(strings.NewReader(smallYAML))
	if err != nil {
		t.Fatal(err)
	}
	all := c.All()
	if len(all) != 2 {
		t.Fatalf("got %d exercises, want 2", len(all))
	}
	curl := all[0]
	if curl.Slug != "dumbbell-curl" {
		t.Errorf("slug = %q, want dumbbell-curl", curl.Slug)
	}
	if curl.BodyPart != "biceps" || curl.Equipment != "dumbbells" {
		t.Errorf("body_part/equipment = %q/%q, want lower-case", curl.BodyPart, curl.Equipment)
	}
	if curl.Pattern != coach.PatternIsolation {
		t.Errorf("pattern = %q, want isolation", curl.Pattern)
	}
}

// TestFindOrdersCompoundFirst verifies ordering and the limit.
func TestFindOrdersCompoundFirst(t *testing.T) {
	c, err := Parse(strings.NewReader(smallYAML))
	if err != nil {
		t.Fatal(err)
	}
	got, _ := c.Find(context.Background(), coach.ExerciseQuery{BodyParts: []string{"BICEPS"}})
	if len(got) != 2 || got[0].Slug != "chin-up" {
		t.Fatalf("got %+v, want chin-up first", got)
	}
	got, _ = c.Find(context.Background(), coach.ExerciseQuery{BodyParts: []string{"biceps"}, Limit: 1})
	if len(got) != 1 {
		t.Errorf("limit ignored: got %d", len(got))
	}
	got, _ = c.Find(context.Background(), coach.ExerciseQuery{Equipment: []string{"barbell"}})
	if len(got) != 0 {
		t.Errorf("equipment filter ignored: got %d", len(got))
	}
}

// TestGetExerciseByName matches by slug or title and reports misses as
// not found.
func TestGetExerciseByName(t *testing.T) {
	c, err := Parse(strings.NewReader(smallYAML))
	if err != nil {
		t.Fatal(err)
	}
	e, err := c.GetExerciseByName(context.Background(), "dumbbell curl")
	if err != nil || e.Slug != "dumbbell-curl" {
		t.Fatalf("by title = %+v, %v", e, err)
	}
	if e, err := c.GetExerciseByName(context.Background(), "chin-up"); err != nil || e.Title != "Chin-Up" {
		t.Fatalf("by slug = %+v, %v", e, err)
	}
	if _, err := c.GetExerciseByName(context.Background(), "Leg Press"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing exercise err = %v, want ErrNotFound", err)
	}
}

// TestParseRejectsInvalid covers missing fields and duplicate slugs.
func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing equipment": "exercises:\n  - title: Plank\n    body_part: core\n",
		"duplicate slug":    "exercises:\n  - title: Plank\n    body_part: core\n    equipment: bodyweight\n  - title: plank\n    body_part: core\n    equipment: bodyweight\n",
		"not yaml":          "exercises: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestReloadKeepsPreviousOnError ensures a broken edit never empties the catalog.
func TestReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(smallYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("exercises: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if err := c.Reload(path); err == nil {
		t.Fatal("expected reload error")
	}
	if c.Len() != 2 {
		t.Errorf("len = %d after failed reload, want 2", c.Len())
	}
}

// TestWatchReloadsOnWrite verifies a file write is picked up by the watcher.
func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(smallYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := c.Watch(ctx, path, log); err != nil {
		t.Fatal(err)
	}

	extra := smallYAML + "  - title: Hammer Curl\n    body_part: biceps\n    equipment: dumbbells\n"
	if err := os.WriteFile(path, []byte(extra), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for c.Len() != 3 {
		if time.Now().After(deadline) {
			t.Fatalf("catalog not reloaded, len = %d", c.Len())
		}
		time.Sleep(50 * time.Millisecond)
	}
}
