package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/service"
)

// fakeCoach records calls and returns canned results.
type fakeCoach struct {
	profiles   map[int]*models.ProfileRow
	saved      *models.ProfileRow
	planReq    *service.PlanRequest
	weightDate time.Time
	weightKg   float64
	imported   string
	importErr  error
	reviewUser int
	previous   []string
}

func newFakeCoach() *fakeCoach {
	return &fakeCoach{profiles: map[int]*models.ProfileRow{}}
}

func (f *fakeCoach) AnalyzeProfile(in coach.ProfileInput) coach.ProfileAnalysis {
	return coach.AnalyzeProfile(in, coach.DefaultThresholds())
}

func (f *fakeCoach) GenerateRoutine(_ context.Context, req coach.RoutineRequest) (*coach.GeneratedRoutine, error) {
	if req.DaysAvailable < coach.MinTrainingDays {
		return nil, fmt.Errorf("recommending split: %w", coach.ErrTooFewDays)
	}
	return &coach.GeneratedRoutine{Name: "Full Body Strength Program", Split: coach.SplitFullBody}, nil
}

func (f *fakeCoach) FindExercises(_ context.Context, q coach.ExerciseQuery) ([]coach.Exercise, error) {
	var out []coach.Exercise
	for _, bp := range q.BodyParts {
		out = append(out, coach.Exercise{Slug: bp + "-move", BodyPart: bp})
	}
	return out, nil
}

func (f *fakeCoach) SaveProfile(_ context.Context, p models.ProfileRow) (*models.ProfileRow, error) {
	if p.DaysAvailable < coach.MinTrainingDays {
		return nil, coach.ErrTooFewDays
	}
	f.saved = &p
	return &p, nil
}

func (f *fakeCoach) GetProfile(_ context.Context, userID int) (*models.ProfileRow, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeCoach) AnalyzeUser(ctx context.Context, userID int) (*coach.ProfileAnalysis, error) {
	p, err := f.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	a := f.AnalyzeProfile(coach.ProfileInput{WeightKg: p.WeightKg, HeightCm: p.HeightCm, TargetWeightKg: p.TargetWeightKg})
	return &a, nil
}

func (f *fakeCoach) GenerateForUser(_ context.Context, userID int, req service.PlanRequest) (*service.Plan, error) {
	f.planReq = &req
	return &service.Plan{UserID: userID, Active: true}, nil
}

func (f *fakeCoach) ActivePlan(context.Context, int) (*service.Plan, error) {
	return nil, fmt.Errorf("active plan: %w", models.ErrNotFound)
}

func (f *fakeCoach) ReviewExercise(_ context.Context, userID int, exercise string) (*service.ExerciseReview, error) {
	f.reviewUser = userID
	return &service.ExerciseReview{Exercise: exercise, Decision: coach.AnalyzeProgress(nil, false)}, nil
}

func (f *fakeCoach) ReviewAdaptation(_ context.Context, _ int, previous []string) (*coach.AdaptationPlan, error) {
	f.previous = previous
	plan := coach.PlanAdaptation(coach.AdaptationInput{Goal: coach.GoalStrength})
	return &plan, nil
}

func (f *fakeCoach) AdaptationReviews(context.Context, int, int) ([]models.AdaptationReviewRow, error) {
	return nil, nil
}

func (f *fakeCoach) LogWeight(_ context.Context, _ int, date time.Time, kg float64, _ string) error {
	f.weightDate, f.weightKg = date, kg
	return nil
}

func (f *fakeCoach) ExerciseHistory(_ context.Context, _ int, exercise string, _ int) (*models.ExerciseHistory, error) {
	return &models.ExerciseHistory{Exercise: exercise}, nil
}

func (f *fakeCoach) ImportAlpha(_ context.Context, _ int, r io.Reader) (*ingest.Result, error) {
	b, _ := io.ReadAll(r)
	f.imported = string(b)
	if f.importErr != nil {
		return nil, f.importErr
	}
	return &ingest.Result{SessionsReceived: 1}, nil
}

func (f *fakeCoach) ImportLogs(context.Context, int, int) ([]models.ImportLog, error) {
	return []models.ImportLog{}, nil
}

func newTestHandler(f *fakeCoach) *Server {
	return New(f, nil, "secret", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" || info.DisplayName != "Local Dev User" {
		t.Errorf("info = %+v", info)
	}
}

// TestHandleMeThroughRouter verifies the dev identity reaches /me end to end.
func TestHandleMeThroughRouter(t *testing.T) {
	rec := do(t, newTestHandler(newFakeCoach()), http.MethodGet, "/api/v1/me", "", nil)
	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.ID != 1 || info.Login != "local" {
		t.Errorf("info = %+v, want dev user", info)
	}
}

// TestHandleAnalyzeProfile checks validation and the computed analysis.
func TestHandleAnalyzeProfile(t *testing.T) {
	h := newTestHandler(newFakeCoach())

	rec := do(t, h, http.MethodPost, "/api/v1/analyze/profile",
		`{"weight_kg":100,"height_cm":175,"target_weight_kg":80,"equipment":["treadmill"]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var a coach.ProfileAnalysis
	if err := json.NewDecoder(rec.Body).Decode(&a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Category != coach.BMIObese || a.RecommendedGoal != coach.GoalFatLoss {
		t.Errorf("analysis = %+v", a)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/analyze/profile", `{"weight_kg":0,"height_cm":175,"target_weight_kg":80}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "weight_kg") {
		t.Errorf("error should name the JSON field: %s", rec.Body)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/analyze/profile", `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
}

// TestHandleCalculators covers the query-parameter calculators.
func TestHandleCalculators(t *testing.T) {
	h := newTestHandler(newFakeCoach())
	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"volume", "/api/v1/volume?level=intermediate&goal=hypertrophy&nutrition=surplus", 200, `"optimal_sets":15`},
		{"volume bad goal", "/api/v1/volume?level=beginner&goal=bulk", 400, "unknown goal"},
		{"split", "/api/v1/split?days=4&level=beginner", 200, `"upper_lower"`},
		{"split too few days", "/api/v1/split?days=2&level=beginner", 400, "error"},
		{"split days not a number", "/api/v1/split?days=four&level=beginner", 400, "integer"},
		{"intensity", "/api/v1/intensity?goal=strength&category=compound_heavy", 200, `"1-0-X-0"`},
		{"intensity bad category", "/api/v1/intensity?goal=strength&category=machine", 400, "error"},
		{"exercises", "/api/v1/exercises?body_part=chest,%20back", 200, "back-move"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "", nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.status, rec.Body)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body %s does not contain %s", rec.Body, tt.want)
			}
		})
	}
}

// TestHandleProgression posts a session and checks the decision.
func TestHandleProgression(t *testing.T) {
	h := newTestHandler(newFakeCoach())
	body := `{"lower_body":true,"sets":[{"reps_target":8,"reps_done":8,"weight_kg":100,"rir":3},{"reps_target":8,"reps_done":8,"weight_kg":100,"rir":3}]}`
	rec := do(t, h, http.MethodPost, "/api/v1/progression", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var d coach.ProgressionDecision
	if err := json.NewDecoder(rec.Body).Decode(&d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Action != coach.ActionIncrease || d.AmountKg != 5 {
		t.Errorf("decision = %+v, want increase 5", d)
	}
}

// TestHandleAdaptation checks history dates are required and parsed.
func TestHandleAdaptation(t *testing.T) {
	h := newTestHandler(newFakeCoach())

	body := `{"goal":"fat_loss","target_weight_kg":80,"history":[{"date":"2026-01-05","weight_kg":90},{"date":"2026-01-19","weight_kg":91}]}`
	rec := do(t, h, http.MethodPost, "/api/v1/adaptation", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var plan coach.AdaptationPlan
	if err := json.NewDecoder(rec.Body).Decode(&plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if plan.Priority != coach.PriorityHigh {
		t.Errorf("priority = %q, want high", plan.Priority)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/adaptation", `{"goal":"fat_loss","history":[{"weight_kg":90}]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing date status = %d, want 400", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/api/v1/adaptation", `{"goal":"fat_loss","history":[{"date":"05/01/2026","weight_kg":90}]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", rec.Code)
	}
}

// TestHandleGenerateRoutine maps too few days to 400.
func TestHandleGenerateRoutine(t *testing.T) {
	h := newTestHandler(newFakeCoach())

	rec := do(t, h, http.MethodPost, "/api/v1/routines", `{"goal":"strength","level":"beginner","days_available":3}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	rec = do(t, h, http.MethodPost, "/api/v1/routines", `{"goal":"strength","level":"beginner","days_available":2}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/api/v1/routines", `{"goal":"strength","level":"pro","days_available":3}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown level status = %d, want 400", rec.Code)
	}
}

// TestUserRoutes checks "me" resolution, cross-user access and 404 mapping.
func TestUserRoutes(t *testing.T) {
	f := newFakeCoach()
	f.profiles[1] = &models.ProfileRow{UserID: 1, WeightKg: 70, HeightCm: 175, TargetWeightKg: 70}
	h := newTestHandler(f)

	if rec := do(t, h, http.MethodGet, "/api/v1/users/me/profile", "", nil); rec.Code != http.StatusOK {
		t.Errorf("own profile status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/users/me/analysis", "", nil); rec.Code != http.StatusOK {
		t.Errorf("own analysis status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/users/2/profile", "", nil); rec.Code != http.StatusForbidden {
		t.Errorf("other user without key status = %d, want 403", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/users/2/profile", "", map[string]string{"X-API-Key": "secret"}); rec.Code != http.StatusNotFound {
		t.Errorf("missing profile status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/users/abc/profile", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad user ID status = %d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/users/me/routines/active", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("no active plan status = %d, want 404", rec.Code)
	}
}

// TestUserReadsPassParameters checks query parameters reach the service.
func TestUserReadsPassParameters(t *testing.T) {
	f := newFakeCoach()
	h := newTestHandler(f)

	rec := do(t, h, http.MethodGet, "/api/v1/users/me/progression", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("progression without exercise status = %d, want 400", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/v1/users/me/progression?exercise=Back+Squat", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Back Squat") {
		t.Errorf("progression status = %d, body = %s", rec.Code, rec.Body)
	}

	do(t, h, http.MethodGet, "/api/v1/users/me/adaptation", "", nil)
	if f.previous != nil {
		t.Errorf("previous equipment = %v, want nil when absent", f.previous)
	}
	do(t, h, http.MethodGet, "/api/v1/users/me/adaptation?previous_equipment=barbell,bench", "", nil)
	if len(f.previous) != 2 || f.previous[1] != "bench" {
		t.Errorf("previous equipment = %v", f.previous)
	}
	do(t, h, http.MethodGet, "/api/v1/users/me/adaptation?previous_equipment=", "", nil)
	if f.previous == nil || len(f.previous) != 0 {
		t.Errorf("previous equipment = %#v, want empty non-nil when given empty", f.previous)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/users/me/exercises/history?exercise=Bench+Press&days=30", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("history status = %d", rec.Code)
	}
}

// TestWritesRequireAPIKey verifies the write group rejects missing and wrong
// keys before reaching handlers.
func TestWritesRequireAPIKey(t *testing.T) {
	f := newFakeCoach()
	h := newTestHandler(f)
	body := `{"goal":"strength","level":"beginner","days_available":3,"weight_kg":80,"height_cm":180,"target_weight_kg":85}`

	if rec := do(t, h, http.MethodPut, "/api/v1/users/me/profile", body, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/api/v1/users/me/profile", body, map[string]string{"X-API-Key": "wrong"}); rec.Code != http.StatusForbidden {
		t.Errorf("wrong key status = %d, want 403", rec.Code)
	}
	rec := do(t, h, http.MethodPut, "/api/v1/users/me/profile", body, map[string]string{"X-API-Key": "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if f.saved == nil || f.saved.UserID != 1 || f.saved.Goal != "strength" {
		t.Errorf("saved = %+v", f.saved)
	}
}

// TestHandleGenerateForUser checks an empty body is allowed and overrides
// pass through.
func TestHandleGenerateForUser(t *testing.T) {
	f := newFakeCoach()
	h := newTestHandler(f)
	key := map[string]string{"X-API-Key": "secret"}

	rec := do(t, h, http.MethodPost, "/api/v1/users/me/routines", "", key)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if f.planReq == nil || f.planReq.Goal != "" {
		t.Errorf("plan request = %+v, want empty overrides", f.planReq)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/users/me/routines", `{"days_available":5,"equipment":["barbell"]}`, key)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if f.planReq.DaysAvailable != 5 || len(f.planReq.Equipment) != 1 {
		t.Errorf("plan request = %+v", f.planReq)
	}
}

// TestHandleLogWeight checks date parsing and body validation.
func TestHandleLogWeight(t *testing.T) {
	f := newFakeCoach()
	h := newTestHandler(f)
	key := map[string]string{"X-API-Key": "secret"}

	rec := do(t, h, http.MethodPost, "/api/v1/users/me/weights", `{"date":"2026-03-02","weight_kg":81.4}`, key)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if !f.weightDate.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) || f.weightKg != 81.4 {
		t.Errorf("logged %v %v", f.weightDate, f.weightKg)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/users/me/weights", `{"weight_kg":75}`, key)
	if rec.Code != http.StatusCreated || !f.weightDate.IsZero() {
		t.Errorf("undated weight status = %d, date = %v", rec.Code, f.weightDate)
	}

	for _, body := range []string{`{"weight_kg":-1}`, `{"weight_kg":900}`, `{"date":"yesterday","weight_kg":80}`} {
		if rec := do(t, h, http.MethodPost, "/api/v1/users/me/weights", body, key); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, rec.Code)
		}
	}
}

// TestHandleAlphaImport verifies the CSV body is streamed to the importer.
func TestHandleAlphaImport(t *testing.T) {
	f := newFakeCoach()
	h := newTestHandler(f)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/sets/alpha", bytes.NewBufferString("Date,Workout\n"))
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if f.imported != "Date,Workout\n" {
		t.Errorf("imported = %q", f.imported)
	}
}

// TestHandleAlphaImportErrors verifies malformed exports are rejected with
// 400 while storage failures surface as 500 so uploaders retry.
func TestHandleAlphaImportErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"malformed", fmt.Errorf("%w: line 1: exercise without session", coach.ErrInvalidInput), http.StatusBadRequest},
		{"storage", errors.New("replacing sessions: extended protocol limited to 65535 parameters"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeCoach()
			f.importErr = tc.err
			h := newTestHandler(f)

			rec := do(t, h, http.MethodPost, "/api/v1/users/me/sets/alpha", "x", map[string]string{"X-API-Key": "secret"})
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
			if tc.want == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "65535") {
				t.Errorf("internal error leaked: %s", rec.Body)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" chest, ,back,")
	if len(got) != 2 || got[0] != "chest" || got[1] != "back" {
		t.Errorf("splitList = %v", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}
