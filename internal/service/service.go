// Package service binds the coaching decision chain to stored user data.
// HTTP handlers, MCP tools and the review scheduler all go through it.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
)

// Store is the persistence the service needs. *storage.DB satisfies it.
type Store interface {
	GetProfile(ctx context.Context, userID int) (*models.ProfileRow, error)
	UpsertProfile(ctx context.Context, p models.ProfileRow) error
	GetEquipment(ctx context.Context, userID int) ([]string, error)
	ListUserIDs(ctx context.Context) ([]int, error)

	SavePlan(ctx context.Context, p models.PlanRow) error
	GetActivePlan(ctx context.Context, userID int) (*models.PlanRow, error)

	ReplaceSessions(ctx context.Context, userID int, dates []time.Time, rows []models.SetLogRow) (int64, error)
	LatestSessionSets(ctx context.Context, userID int, exercise string) ([]models.SetLogRow, error)
	GetExerciseHistory(ctx context.Context, start, end time.Time, userID int, exercise string) (*models.ExerciseHistory, error)

	InsertWeightSample(ctx context.Context, s models.WeightSampleRow) error
	WeightHistory(ctx context.Context, userID int, since time.Time) ([]models.WeightSampleRow, error)

	InsertAdaptationReview(ctx context.Context, r models.AdaptationReviewRow) (int64, error)
	ListAdaptationReviews(ctx context.Context, userID, limit int) ([]models.AdaptationReviewRow, error)

	InsertImportLog(ctx context.Context, log models.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]models.ImportLog, error)
}

// Catalog is the exercise source: routine candidates plus name lookup.
// Both *storage.DB and *catalog.Catalog satisfy it.
type Catalog interface {
	coach.Catalog
	GetExerciseByName(ctx context.Context, name string) (*coach.Exercise, error)
}

// HistoryWindow is how far back adaptation reviews read weight samples.
const HistoryWindow = 12 * 7 * 24 * time.Hour

// Service runs coaching operations against stored user data.
type Service struct {
	store      Store
	catalog    Catalog
	generator  *coach.RoutineGenerator
	thresholds coach.Thresholds
	log        *slog.Logger
	now        func() time.Time
}

// New creates a Service.
func New(store Store, catalog Catalog, thresholds coach.Thresholds, log *slog.Logger) *Service {
	return &Service{
		store:      store,
		catalog:    catalog,
		generator:  coach.NewRoutineGenerator(catalog),
		thresholds: thresholds,
		log:        log,
		now:        time.Now,
	}
}

// AnalyzeProfile runs the profile analyzer with the configured thresholds.
func (s *Service) AnalyzeProfile(in coach.ProfileInput) coach.ProfileAnalysis {
	return coach.AnalyzeProfile(in, s.thresholds)
}

// GenerateRoutine builds a routine without reading or storing user data.
func (s *Service) GenerateRoutine(ctx context.Context, req coach.RoutineRequest) (*coach.GeneratedRoutine, error) {
	return s.generator.Generate(ctx, req)
}

// FindExercises queries the exercise catalog.
func (s *Service) FindExercises(ctx context.Context, q coach.ExerciseQuery) ([]coach.Exercise, error) {
	return s.catalog.Find(ctx, q)
}
