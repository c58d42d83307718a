package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/ingest/alpha"
	"github.com/claude/repcoach/internal/models"
)

// DefaultHistoryDays is the exercise history window when none is given.
const DefaultHistoryDays = 90

// LogWeight records a body-weight sample. A zero date means today.
func (s *Service) LogWeight(ctx context.Context, userID int, date time.Time, weightKg float64, source string) error {
	if weightKg <= 0 || weightKg > 500 {
		return fmt.Errorf("%w: weight %.1f kg out of range", coach.ErrInvalidInput, weightKg)
	}
	if date.IsZero() {
		date = s.now()
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return s.store.InsertWeightSample(ctx, models.WeightSampleRow{
		UserID:   userID,
		Date:     day,
		WeightKg: weightKg,
		Source:   source,
	})
}

// ImportAlpha ingests an Alpha Progression CSV export and records the
// outcome in the import log. A malformed export wraps coach.ErrInvalidInput.
func (s *Service) ImportAlpha(ctx context.Context, userID int, r io.Reader) (*ingest.Result, error) {
	start := s.now()
	result, err := alpha.NewProvider(s.store, s.log).Ingest(ctx, r, userID)
	durationMs := int(s.now().Sub(start).Milliseconds())

	entry := models.ImportLog{
		UserID:     userID,
		Source:     "alpha_csv",
		Status:     "success",
		DurationMs: &durationMs,
	}
	if err != nil {
		msg := err.Error()
		entry.Status = "error"
		entry.ErrorMessage = &msg
	} else {
		entry.SetsReceived = result.SetsReceived
		entry.SetsInserted = result.SetsInserted
	}
	if _, logErr := s.store.InsertImportLog(ctx, entry); logErr != nil {
		s.log.Error("failed to write import log", "user_id", userID, "error", logErr)
	}
	if err != nil {
		if errors.Is(err, alpha.ErrMalformed) {
			return nil, fmt.Errorf("%w: %w", coach.ErrInvalidInput, err)
		}
		return nil, err
	}
	return result, nil
}

// ImportLogs lists recent imports for a user.
func (s *Service) ImportLogs(ctx context.Context, userID, limit int) ([]models.ImportLog, error) {
	return s.store.QueryImportLogs(ctx, userID, limit)
}

// ExerciseHistory summarizes the last days of an exercise, one entry per
// session.
func (s *Service) ExerciseHistory(ctx context.Context, userID int, exercise string, days int) (*models.ExerciseHistory, error) {
	if exercise == "" {
		return nil, fmt.Errorf("%w: exercise is required", coach.ErrInvalidInput)
	}
	if days <= 0 {
		days = DefaultHistoryDays
	}
	end := s.now()
	start := end.AddDate(0, 0, -days)
	return s.store.GetExerciseHistory(ctx, start, end, userID, exercise)
}
