package mcp

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestParseDate verifies date-only, RFC 3339 and empty inputs.
func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-03-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2026 || d.Month() != 3 || d.Day() != 2 {
		t.Errorf("date = %v, want 2026-03-02", d)
	}

	d, err = parseDate("2026-06-15T10:30:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Hour() != 10 || d.Minute() != 30 {
		t.Errorf("date = %v, want 10:30", d)
	}

	if d, err = parseDate(""); err != nil || !d.IsZero() {
		t.Errorf("empty = %v, %v; want zero time", d, err)
	}
	if _, err = parseDate("not-a-date"); err == nil {
		t.Error("expected error for invalid date")
	}
}

// fakeSource records the user ID each call was made for.
type fakeSource struct {
	uid      int
	previous []string
	logged   time.Time
	plan     *service.Plan
}

func (f *fakeSource) GenerateRoutine(_ context.Context, req coach.RoutineRequest) (*coach.GeneratedRoutine, error) {
	if req.DaysAvailable < coach.MinTrainingDays {
		return nil, coach.ErrTooFewDays
	}
	return &coach.GeneratedRoutine{Name: "Full Body Strength Program", Days: []coach.RoutineDay{}}, nil
}

func (f *fakeSource) FindExercises(context.Context, coach.ExerciseQuery) ([]coach.Exercise, error) {
	return []coach.Exercise{{Slug: "plank", Title: "Plank"}}, nil
}

func (f *fakeSource) AnalyzeUser(_ context.Context, uid int) (*coach.ProfileAnalysis, error) {
	f.uid = uid
	return nil, models.ErrNotFound
}

func (f *fakeSource) GenerateForUser(_ context.Context, uid int, req service.PlanRequest) (*service.Plan, error) {
	f.uid = uid
	f.plan = &service.Plan{UserID: uid, Equipment: req.Equipment}
	return f.plan, nil
}

func (f *fakeSource) ActivePlan(_ context.Context, uid int) (*service.Plan, error) {
	f.uid = uid
	if f.plan == nil {
		return nil, models.ErrNotFound
	}
	return f.plan, nil
}

func (f *fakeSource) ReviewExercise(_ context.Context, uid int, exercise string) (*service.ExerciseReview, error) {
	f.uid = uid
	return &service.ExerciseReview{Exercise: exercise, Decision: coach.AnalyzeProgress(nil, false)}, nil
}

func (f *fakeSource) ReviewAdaptation(_ context.Context, uid int, previous []string) (*coach.AdaptationPlan, error) {
	f.uid, f.previous = uid, previous
	return &coach.AdaptationPlan{Priority: coach.PriorityNone}, nil
}

func (f *fakeSource) ExerciseHistory(_ context.Context, uid int, exercise string, _ int) (*models.ExerciseHistory, error) {
	f.uid = uid
	return &models.ExerciseHistory{Exercise: exercise}, nil
}

func (f *fakeSource) LogWeight(_ context.Context, uid int, date time.Time, _ float64, _ string) error {
	f.uid, f.logged = uid, date
	return nil
}

func call(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), ctx context.Context, args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := fn(ctx, req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T, want TextContent", res.Content[0])
	}
	return text.Text, res.IsError
}

func newTestHandlers() (*handlers, *fakeSource) {
	f := &fakeSource{}
	return &handlers{ds: f, log: slog.New(slog.NewTextHandler(io.Discard, nil))}, f
}

// TestStatelessTools verifies calculators answer without touching the data
// source and reject bad enums as tool errors.
func TestStatelessTools(t *testing.T) {
	h, _ := newTestHandlers()
	ctx := context.Background()

	text, isErr := call(t, h.getVolume, ctx, map[string]any{"level": "intermediate", "goal": "hypertrophy", "nutrition": "surplus"})
	if isErr || !strings.Contains(text, `"optimal_sets":15`) {
		t.Errorf("get_volume = %s (error=%v)", text, isErr)
	}

	text, isErr = call(t, h.recommendSplit, ctx, map[string]any{"days": float64(6), "level": "advanced"})
	if isErr || !strings.Contains(text, "arnold") {
		t.Errorf("recommend_split = %s (error=%v)", text, isErr)
	}

	if _, isErr = call(t, h.recommendSplit, ctx, map[string]any{"days": float64(2), "level": "advanced"}); !isErr {
		t.Error("two days should be a tool error")
	}

	text, isErr = call(t, h.getIntensity, ctx, map[string]any{"goal": "strength", "category": "compound_heavy"})
	if isErr || !strings.Contains(text, "1-0-X-0") {
		t.Errorf("get_intensity = %s (error=%v)", text, isErr)
	}

	if _, isErr = call(t, h.getIntensity, ctx, map[string]any{"goal": "bulk", "category": "isolation"}); !isErr {
		t.Error("unknown goal should be a tool error")
	}
}

// TestUserToolsScopeToContext verifies every user tool reads the user ID
// from the context.
func TestUserToolsScopeToContext(t *testing.T) {
	h, f := newTestHandlers()
	ctx := WithUserID(context.Background(), 7)

	if _, isErr := call(t, h.getActivePlan, ctx, nil); !isErr {
		t.Error("missing plan should be a tool error")
	}
	if f.uid != 7 {
		t.Errorf("uid = %d, want 7", f.uid)
	}

	text, isErr := call(t, h.createPlan, ctx, map[string]any{"equipment": "barbell, bench"})
	if isErr {
		t.Fatalf("create_plan error: %s", text)
	}
	if len(f.plan.Equipment) != 2 || f.plan.Equipment[1] != "bench" {
		t.Errorf("equipment = %v", f.plan.Equipment)
	}

	if _, isErr = call(t, h.getActivePlan, ctx, nil); isErr {
		t.Error("stored plan should be returned")
	}

	if text, _ := call(t, h.analyzeProfile, ctx, nil); !strings.Contains(text, "no profile") {
		t.Errorf("analyze_profile without profile = %s", text)
	}
}

// TestReviewTools covers parameter handling for the review tools.
func TestReviewTools(t *testing.T) {
	h, f := newTestHandlers()
	ctx := context.Background()

	if _, isErr := call(t, h.reviewExercise, ctx, map[string]any{}); !isErr {
		t.Error("missing exercise should be a tool error")
	}
	text, isErr := call(t, h.reviewExercise, ctx, map[string]any{"exercise": "Back Squat"})
	if isErr || !strings.Contains(text, "maintain") {
		t.Errorf("review_exercise = %s", text)
	}

	call(t, h.reviewAdaptation, ctx, nil)
	if f.previous != nil {
		t.Errorf("previous = %v, want nil", f.previous)
	}
	call(t, h.reviewAdaptation, ctx, map[string]any{"previous_equipment": "bands"})
	if len(f.previous) != 1 {
		t.Errorf("previous = %v, want [bands]", f.previous)
	}
}

// TestLogWeightTool checks date parsing and the required weight.
func TestLogWeightTool(t *testing.T) {
	h, f := newTestHandlers()
	ctx := context.Background()

	text, isErr := call(t, h.logWeight, ctx, map[string]any{"weight_kg": 82.3, "date": "2026-04-01"})
	if isErr {
		t.Fatalf("log_weight error: %s", text)
	}
	if f.logged.Day() != 1 || f.logged.Month() != 4 {
		t.Errorf("logged date = %v", f.logged)
	}

	if _, isErr = call(t, h.logWeight, ctx, map[string]any{"date": "2026-04-01"}); !isErr {
		t.Error("missing weight should be a tool error")
	}
	if _, isErr = call(t, h.logWeight, ctx, map[string]any{"weight_kg": 82.3, "date": "April 1"}); !isErr {
		t.Error("bad date should be a tool error")
	}
}

// TestGenerateRoutineTool verifies days are required and domain errors are
// surfaced as tool errors.
func TestGenerateRoutineTool(t *testing.T) {
	h, _ := newTestHandlers()
	ctx := context.Background()

	args := map[string]any{"goal": "strength", "level": "beginner", "days": float64(3)}
	if text, isErr := call(t, h.generateRoutine, ctx, args); isErr {
		t.Errorf("generate_routine error: %s", text)
	}
	args["days"] = float64(2)
	if _, isErr := call(t, h.generateRoutine, ctx, args); !isErr {
		t.Error("two days should be a tool error")
	}
	delete(args, "days")
	if _, isErr := call(t, h.generateRoutine, ctx, args); !isErr {
		t.Error("missing days should be a tool error")
	}
}

// TestNewRegistersTools verifies the server builds with the data source.
func TestNewRegistersTools(t *testing.T) {
	h, _ := newTestHandlers()
	if s := New(h.ds, "test", h.log); s == nil {
		t.Fatal("New returned nil")
	}
}
