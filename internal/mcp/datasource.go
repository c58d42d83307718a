package mcp

import (
	"context"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/service"
)

// DataSource abstracts the coaching backend for MCP tools. Both
// *service.Service (local) and HTTPClient (remote via REST API) satisfy
// this interface.
type DataSource interface {
	GenerateRoutine(ctx context.Context, req coach.RoutineRequest) (*coach.GeneratedRoutine, error)
	FindExercises(ctx context.Context, q coach.ExerciseQuery) ([]coach.Exercise, error)
	AnalyzeUser(ctx context.Context, userID int) (*coach.ProfileAnalysis, error)
	GenerateForUser(ctx context.Context, userID int, req service.PlanRequest) (*service.Plan, error)
	ActivePlan(ctx context.Context, userID int) (*service.Plan, error)
	ReviewExercise(ctx context.Context, userID int, exercise string) (*service.ExerciseReview, error)
	ReviewAdaptation(ctx context.Context, userID int, previousEquipment []string) (*coach.AdaptationPlan, error)
	ExerciseHistory(ctx context.Context, userID int, exercise string, days int) (*models.ExerciseHistory, error)
	LogWeight(ctx context.Context, userID int, date time.Time, weightKg float64, source string) error
}

// Compile-time check: *service.Service satisfies DataSource.
var _ DataSource = (*service.Service)(nil)
