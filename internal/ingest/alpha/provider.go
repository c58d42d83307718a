package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/models"
)

// SetLogStore is where imported sets are written. *storage.DB and
// *localstore.Store both satisfy it.
type SetLogStore interface {
	// ReplaceSessions deletes the user's sets at each session date and
	// inserts rows, atomically.
	ReplaceSessions(ctx context.Context, userID int, dates []time.Time, rows []models.SetLogRow) (int64, error)
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	store SetLogStore
	log   *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(store SetLogStore, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// Ingest parses a CSV export and stores its sets. Each session is replaced
// wholesale so re-importing an edited export reflects the latest values.
// If the write fails, the previously stored sessions are kept.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	seen := map[string]bool{}
	dates := make([]time.Time, 0, len(sessions))
	var rows []models.SetLogRow

	for _, s := range sessions {
		dates = append(dates, s.Date)
		for _, ex := range s.Exercises {
			if !seen[ex.Name] {
				seen[ex.Name] = true
				result.Exercises = append(result.Exercises, ex.Name)
			}
			for _, set := range ex.Sets {
				switch {
				case set.IsWarmup:
					result.WarmupSets++
				case set.RIR == models.UntrackedRIR:
					result.UntrackedRIR++
				}
				rows = append(rows, toRow(userID, s, ex, set))
			}
		}
	}

	result.SetsReceived = len(rows)
	if len(dates) > 0 {
		inserted, err := p.store.ReplaceSessions(ctx, userID, dates, rows)
		if err != nil {
			return nil, fmt.Errorf("replacing sessions: %w", err)
		}
		result.SetsInserted = inserted
		result.SetsSkipped = int64(len(rows)) - inserted
	}

	p.log.Info("alpha import",
		"user_id", userID,
		"sessions", result.SessionsReceived,
		"sets", result.SetsReceived,
		"inserted", result.SetsInserted,
	)
	return result, nil
}

func toRow(userID int, s models.AlphaSession, ex models.AlphaExercise, set models.AlphaSet) models.SetLogRow {
	return models.SetLogRow{
		UserID:           userID,
		SessionName:      s.Name,
		SessionDate:      s.Date,
		ExerciseNumber:   ex.Number,
		ExerciseName:     ex.Name,
		Equipment:        ex.Equipment,
		TargetReps:       ex.TargetReps,
		IsWarmup:         set.IsWarmup,
		SetNumber:        set.Number,
		WeightKg:         set.WeightKg,
		IsBodyweightPlus: set.IsBodyweightPlus,
		Reps:             set.Reps,
		RIR:              set.RIR,
	}
}
