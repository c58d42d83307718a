package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

var (
	goalEnum      = mcp.Enum("hypertrophy", "strength", "fat_loss", "recomposition", "maintenance")
	levelEnum     = mcp.Enum("beginner", "intermediate", "advanced")
	nutritionEnum = mcp.Enum("surplus", "maintenance", "deficit")
)

// parseDate accepts RFC 3339 or YYYY-MM-DD. Empty means the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// splitList turns "barbell, dumbbells" into its trimmed, non-empty parts.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// --- Tool definitions ---

var toolAnalyzeProfile = mcp.NewTool("analyze_profile",
	mcp.WithDescription("Analyze the user's stored profile: BMI and category, recommended training goal, cardio protocol and health warnings."),
)

var toolGetVolume = mcp.NewTool("get_volume",
	mcp.WithDescription("Weekly working sets per muscle group (min/optimal/max) for a level, goal and nutrition state."),
	mcp.WithString("level", mcp.Required(), mcp.Description("Training experience"), levelEnum),
	mcp.WithString("goal", mcp.Required(), mcp.Description("Training goal"), goalEnum),
	mcp.WithString("nutrition", mcp.Description("Caloric state. Defaults to maintenance."), nutritionEnum),
)

var toolRecommendSplit = mcp.NewTool("recommend_split",
	mcp.WithDescription("Recommend a training split and 7-day schedule for the days available per week (3-6)."),
	mcp.WithNumber("days", mcp.Required(), mcp.Description("Training days per week. Fewer than 3 is rejected; more than 6 is capped with a warning.")),
	mcp.WithString("level", mcp.Required(), mcp.Description("Training experience"), levelEnum),
)

var toolGetIntensity = mcp.NewTool("get_intensity",
	mcp.WithDescription("Rep range, RIR target, rest and tempo for an exercise category under a goal."),
	mcp.WithString("goal", mcp.Required(), mcp.Description("Training goal"), goalEnum),
	mcp.WithString("category", mcp.Required(), mcp.Description("Exercise category"), mcp.Enum("compound_heavy", "compound_medium", "isolation", "bodyweight")),
)

var toolGenerateRoutine = mcp.NewTool("generate_routine",
	mcp.WithDescription("Build a weekly routine from explicit parameters without storing it. Use create_plan to save one for the user."),
	mcp.WithString("goal", mcp.Required(), mcp.Description("Training goal"), goalEnum),
	mcp.WithString("level", mcp.Required(), mcp.Description("Training experience"), levelEnum),
	mcp.WithNumber("days", mcp.Required(), mcp.Description("Training days per week (3-6)")),
	mcp.WithString("equipment", mcp.Description("Comma-separated equipment (e.g. 'barbell, dumbbells'). Bodyweight is always included.")),
	mcp.WithString("nutrition", mcp.Description("Caloric state. Defaults to maintenance."), nutritionEnum),
)

var toolCreatePlan = mcp.NewTool("create_plan",
	mcp.WithDescription("Generate a routine from the user's stored profile, save it and make it the active plan. Parameters override the profile for this plan only."),
	mcp.WithString("goal", mcp.Description("Override the profile goal"), goalEnum),
	mcp.WithString("level", mcp.Description("Override the profile level"), levelEnum),
	mcp.WithNumber("days", mcp.Description("Override training days per week")),
	mcp.WithString("equipment", mcp.Description("Override the equipment list (comma-separated)")),
)

var toolGetActivePlan = mcp.NewTool("get_active_plan",
	mcp.WithDescription("Return the user's active weekly plan."),
)

var toolReviewExercise = mcp.NewTool("review_exercise",
	mcp.WithDescription("Decide the next load for an exercise from its most recent session: increase (with kg), maintain, or maintain because reps were missed."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name as logged (e.g. 'Back Squat')")),
)

var toolReviewAdaptation = mcp.NewTool("review_adaptation",
	mcp.WithDescription("Check body-weight trend, plateaus and equipment changes against the user's goal and return prioritized plan adjustments."),
	mcp.WithString("previous_equipment", mcp.Description("Comma-separated equipment the plan was built for. Defaults to the active plan's equipment.")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Session-by-session history of an exercise: top weight, tonnage, set count, missed sets and average RIR."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match)")),
	mcp.WithNumber("days", mcp.Description("Look-back window in days. Defaults to 90.")),
)

var toolLogWeight = mcp.NewTool("log_weight",
	mcp.WithDescription("Record a body-weight measurement for the user. One sample per day; a later entry replaces the earlier one."),
	mcp.WithNumber("weight_kg", mcp.Required(), mcp.Description("Body weight in kilograms")),
	mcp.WithString("date", mcp.Description("Date (YYYY-MM-DD). Defaults to today.")),
)

var toolFindExercises = mcp.NewTool("find_exercises",
	mcp.WithDescription("Search the exercise catalog by body part, equipment and movement pattern."),
	mcp.WithString("body_part", mcp.Description("Comma-separated body parts (e.g. 'chest, triceps')")),
	mcp.WithString("equipment", mcp.Description("Comma-separated available equipment")),
	mcp.WithString("pattern", mcp.Description("Movement pattern"), mcp.Enum("push", "pull", "squat", "hinge", "isolation", "core", "carry")),
	mcp.WithNumber("limit", mcp.Description("Maximum results")),
)

// --- Tool handlers ---

// toolResult serializes v, or turns err into a tool error. Domain errors
// are reported verbatim; anything else is logged too.
func (h *handlers) toolResult(tool string, v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		if !errors.Is(err, coach.ErrInvalidInput) && !errors.Is(err, models.ErrNotFound) {
			h.log.Error("mcp "+tool, "error", err)
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) analyzeProfile(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := h.ds.AnalyzeUser(ctx, UserIDFromContext(ctx))
	if errors.Is(err, models.ErrNotFound) {
		return mcp.NewToolResultError("no profile stored for this user; save one first"), nil
	}
	return h.toolResult("analyze_profile", a, err)
}

func (h *handlers) getVolume(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	level, err := coach.ParseLevel(req.GetString("level", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	goal, err := coach.ParseGoal(req.GetString("goal", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nutrition, err := coach.ParseNutrition(req.GetString("nutrition", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.toolResult("get_volume", coach.CalculateVolume(level, goal, nutrition), nil)
}

func (h *handlers) recommendSplit(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days, err := req.RequireInt("days")
	if err != nil {
		return mcp.NewToolResultError("days parameter is required"), nil
	}
	level, err := coach.ParseLevel(req.GetString("level", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	split, err := coach.RecommendSplit(days, level)
	return h.toolResult("recommend_split", split, err)
}

func (h *handlers) getIntensity(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, err := coach.ParseGoal(req.GetString("goal", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := coach.ParseCategory(req.GetString("category", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.toolResult("get_intensity", coach.Prescribe(goal, category), nil)
}

func (h *handlers) generateRoutine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, err := coach.ParseGoal(req.GetString("goal", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	level, err := coach.ParseLevel(req.GetString("level", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nutrition, err := coach.ParseNutrition(req.GetString("nutrition", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	days, err := req.RequireInt("days")
	if err != nil {
		return mcp.NewToolResultError("days parameter is required"), nil
	}
	routine, err := h.ds.GenerateRoutine(ctx, coach.RoutineRequest{
		Goal:          goal,
		Level:         level,
		DaysAvailable: days,
		Equipment:     splitList(req.GetString("equipment", "")),
		Nutrition:     nutrition,
	})
	return h.toolResult("generate_routine", routine, err)
}

func (h *handlers) createPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pr := service.PlanRequest{
		Goal:          req.GetString("goal", ""),
		Level:         req.GetString("level", ""),
		DaysAvailable: req.GetInt("days", 0),
		Equipment:     splitList(req.GetString("equipment", "")),
	}
	plan, err := h.ds.GenerateForUser(ctx, UserIDFromContext(ctx), pr)
	return h.toolResult("create_plan", plan, err)
}

func (h *handlers) getActivePlan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := h.ds.ActivePlan(ctx, UserIDFromContext(ctx))
	if errors.Is(err, models.ErrNotFound) {
		return mcp.NewToolResultError("no active plan; use create_plan to build one"), nil
	}
	return h.toolResult("get_active_plan", plan, err)
}

func (h *handlers) reviewExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	review, err := h.ds.ReviewExercise(ctx, UserIDFromContext(ctx), exercise)
	return h.toolResult("review_exercise", review, err)
}

func (h *handlers) reviewAdaptation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var previous []string
	if s := req.GetString("previous_equipment", ""); s != "" {
		previous = splitList(s)
	}
	plan, err := h.ds.ReviewAdaptation(ctx, UserIDFromContext(ctx), previous)
	return h.toolResult("review_adaptation", plan, err)
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	history, err := h.ds.ExerciseHistory(ctx, UserIDFromContext(ctx), exercise, req.GetInt("days", 0))
	return h.toolResult("get_exercise_history", history, err)
}

func (h *handlers) logWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kg, err := req.RequireFloat("weight_kg")
	if err != nil {
		return mcp.NewToolResultError("weight_kg parameter is required"), nil
	}
	date, err := parseDate(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	if err := h.ds.LogWeight(ctx, UserIDFromContext(ctx), date, kg, "mcp"); err != nil {
		return h.toolResult("log_weight", nil, err)
	}
	return mcp.NewToolResultText("weight recorded"), nil
}

func (h *handlers) findExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exs, err := h.ds.FindExercises(ctx, coach.ExerciseQuery{
		BodyParts: splitList(req.GetString("body_part", "")),
		Equipment: splitList(req.GetString("equipment", "")),
		Pattern:   req.GetString("pattern", ""),
		Limit:     req.GetInt("limit", 0),
	})
	return h.toolResult("find_exercises", exs, err)
}
