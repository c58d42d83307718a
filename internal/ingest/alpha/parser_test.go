package alpha

import (
	"errors"
	"strings"
	"testing"

	"github.com/claude/repcoach/internal/models"
)

const sampleCSV = `
"Lower · Day 2 · Week 3 · Upper/Lower";"2026-03-12 6:15 h";"0:58 hr"
"1. Back Squat · Barbell · 6 reps";"WU1 · 40 kg · 8 reps<br>WU2 · 72,5 kg · 5 reps"
#;KG;REPS;RIR
1;100;6;2
2;100;6;2
3;100;5;1
"2. Romanian Deadlift · Barbell · 8 reps";"WU1 · 50 kg · 8 reps"
#;KG;REPS;RIR
1;90;8;2
2;90;8;
"3. Nordic Curl · Bodyweight · 6 reps · 1 dropset"
#;KG;REPS;RIR
1;+0;6;0,5
2;+5;5;-

"Upper · Day 1 · Week 3 · Upper/Lower";"2026-03-10 18:02 h";"1:05 hr"
"1. Bench Press · Barbell · 8 reps";"WU1 · 20 kg · 10 reps"
#;KG;REPS;RIR
1;82,5;8;2
2;82,5;8;2
`

// TestParseSessions verifies the full export shape: sessions, exercises,
// warm-ups folded into each exercise and working sets in order.
func TestParseSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	lower := sessions[0]
	if lower.Name != "Lower · Day 2 · Week 3 · Upper/Lower" || lower.Duration != "0:58 hr" {
		t.Errorf("session header = %q / %q", lower.Name, lower.Duration)
	}
	if lower.Date.Hour() != 6 || lower.Date.Minute() != 15 {
		t.Errorf("date = %v, want 06:15", lower.Date)
	}
	if sessions[1].Date.Hour() != 18 {
		t.Errorf("24h date = %v, want 18:02", sessions[1].Date)
	}

	tests := []struct {
		name      string
		equipment string
		target    int
		warmups   int
		working   int
	}{
		{"Back Squat", "Barbell", 6, 2, 3},
		{"Romanian Deadlift", "Barbell", 8, 1, 2},
		{"Nordic Curl", "Bodyweight", 6, 0, 2},
	}
	if len(lower.Exercises) != len(tests) {
		t.Fatalf("exercises = %d, want %d", len(lower.Exercises), len(tests))
	}
	for i, tt := range tests {
		ex := lower.Exercises[i]
		if ex.Name != tt.name || ex.Equipment != tt.equipment || ex.TargetReps != tt.target {
			t.Errorf("exercise %d = %q/%q/%d, want %q/%q/%d", i+1, ex.Name, ex.Equipment, ex.TargetReps, tt.name, tt.equipment, tt.target)
		}
		working := ex.WorkingSets()
		if got := len(ex.Sets) - len(working); got != tt.warmups {
			t.Errorf("%s warmups = %d, want %d", tt.name, got, tt.warmups)
		}
		if len(working) != tt.working {
			t.Errorf("%s working sets = %d, want %d", tt.name, len(working), tt.working)
		}
	}
}

// TestParseRIRValues covers decimal, empty and dashed RIR columns. Empty or
// dashed values are stored as the untracked sentinel.
func TestParseRIRValues(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	rdl := sessions[0].Exercises[1].WorkingSets()
	if rdl[0].RIR != 2 {
		t.Errorf("rdl set 1 RIR = %v, want 2", rdl[0].RIR)
	}
	if rdl[1].RIR != models.UntrackedRIR {
		t.Errorf("empty RIR = %v, want untracked", rdl[1].RIR)
	}

	nordic := sessions[0].Exercises[2].WorkingSets()
	if nordic[0].RIR != 0.5 {
		t.Errorf("decimal RIR = %v, want 0.5", nordic[0].RIR)
	}
	if nordic[1].RIR != models.UntrackedRIR {
		t.Errorf("dashed RIR = %v, want untracked", nordic[1].RIR)
	}
	if !nordic[1].IsBodyweightPlus || nordic[1].WeightKg != 5 {
		t.Errorf("bodyweight plus = %v/%v, want true/5", nordic[1].IsBodyweightPlus, nordic[1].WeightKg)
	}
}

// TestParseWeight covers European decimals and bodyweight-plus notation.
func TestParseWeight(t *testing.T) {
	tests := []struct {
		in     string
		weight float64
		plus   bool
	}{
		{"102,5", 102.5, false},
		{"80", 80, false},
		{"+35", 35, true},
		{"+0", 0, true},
		{" +12,5 ", 12.5, true},
	}
	for _, tt := range tests {
		w, plus := parseWeight(tt.in)
		if w != tt.weight || plus != tt.plus {
			t.Errorf("parseWeight(%q) = %v,%v want %v,%v", tt.in, w, plus, tt.weight, tt.plus)
		}
	}
}

// TestParseWarmups verifies <br>-separated warm-ups never carry RIR.
func TestParseWarmups(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>garbage<br>WU2 · +0 kg · 7 reps")
	if len(sets) != 2 {
		t.Fatalf("warmup sets = %d, want 2", len(sets))
	}
	if sets[0].WeightKg != 37.5 || sets[0].Reps != 9 || !sets[0].IsWarmup {
		t.Errorf("wu1 = %+v", sets[0])
	}
	if !sets[1].IsBodyweightPlus || sets[1].Number != 2 {
		t.Errorf("wu2 = %+v", sets[1])
	}
	for _, s := range sets {
		if s.RIR != models.UntrackedRIR {
			t.Errorf("warmup RIR = %v, want untracked", s.RIR)
		}
	}
}

// TestParseErrors checks malformed structure is reported with a line number.
func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"exercise without session": `"1. Bench Press · Barbell · 8 reps"`,
		"set without exercise":     "\"Push\";\"2026-03-10 18:02 h\";\"1:05 hr\"\n1;80;8;2",
		"bad date":                 `"Push";"2026-13-40 99:99 h";"1:05 hr"`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "line ") {
				t.Errorf("error %q has no line number", err)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error %q is not ErrMalformed", err)
			}
		})
	}
}

// TestParseEmpty verifies empty input returns no sessions without error.
func TestParseEmpty(t *testing.T) {
	sessions, err := Parse(strings.NewReader("\n\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}
