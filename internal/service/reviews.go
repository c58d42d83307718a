package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"golang.org/x/sync/errgroup"
)

// ExerciseReview is the progression verdict for one exercise.
type ExerciseReview struct {
	Exercise    string                    `json:"exercise"`
	SessionDate *time.Time                `json:"session_date,omitempty"`
	LowerBody   bool                      `json:"lower_body"`
	Sets        []coach.SetLog            `json:"sets"`
	Decision    coach.ProgressionDecision `json:"decision"`
}

// ReviewExercise loads the latest working sets of an exercise and runs the
// progression rules on them. Untracked RIR counts as zero.
func (s *Service) ReviewExercise(ctx context.Context, userID int, exercise string) (*ExerciseReview, error) {
	if exercise == "" {
		return nil, fmt.Errorf("%w: exercise is required", coach.ErrInvalidInput)
	}

	var (
		rows      []models.SetLogRow
		lowerBody bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.store.LatestSessionSets(gctx, userID, exercise)
		rows = r
		return err
	})
	g.Go(func() error {
		e, err := s.catalog.GetExerciseByName(gctx, exercise)
		if errors.Is(err, models.ErrNotFound) {
			s.log.Debug("exercise not in catalog, assuming upper body", "exercise", exercise)
			return nil
		}
		if err != nil {
			return err
		}
		lowerBody = coach.IsLowerBody(e.BodyPart)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading exercise data: %w", err)
	}

	review := &ExerciseReview{Exercise: exercise, LowerBody: lowerBody, Sets: ToSetLogs(rows)}
	if len(rows) > 0 {
		d := rows[0].SessionDate
		review.SessionDate = &d
	}
	review.Decision = coach.AnalyzeProgress(review.Sets, lowerBody)
	return review, nil
}

// ToSetLogs converts stored working sets into progression input. Warm-ups
// are dropped and untracked RIR becomes 0.
func ToSetLogs(rows []models.SetLogRow) []coach.SetLog {
	sets := make([]coach.SetLog, 0, len(rows))
	for _, r := range rows {
		if r.IsWarmup {
			continue
		}
		rir := r.RIR
		if rir == models.UntrackedRIR {
			rir = 0
		}
		sets = append(sets, coach.SetLog{
			RepsTarget: r.TargetReps,
			RepsDone:   r.Reps,
			WeightKg:   r.WeightKg,
			RIR:        rir,
		})
	}
	return sets
}

// ReviewAdaptation runs the adaptation engine on the user's recent weight
// history. When previousEquipment is nil the active plan's equipment
// snapshot is compared against the current profile instead.
func (s *Service) ReviewAdaptation(ctx context.Context, userID int, previousEquipment []string) (*coach.AdaptationPlan, error) {
	var (
		profile *models.ProfileRow
		history []models.WeightSampleRow
		plan    *models.PlanRow
	)
	since := s.now().Add(-HistoryWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.store.GetProfile(gctx, userID)
		profile = p
		return err
	})
	g.Go(func() error {
		h, err := s.store.WeightHistory(gctx, userID, since)
		history = h
		return err
	})
	if previousEquipment == nil {
		g.Go(func() error {
			p, err := s.store.GetActivePlan(gctx, userID)
			if errors.Is(err, models.ErrNotFound) {
				return nil
			}
			plan = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading adaptation data: %w", err)
	}

	goal, err := coach.ParseGoal(profile.Goal)
	if err != nil {
		return nil, err
	}
	if previousEquipment == nil && plan != nil {
		previousEquipment = plan.Equipment
	}

	samples := make([]coach.WeightSample, len(history))
	for i, h := range history {
		samples[i] = coach.WeightSample{Date: h.Date, WeightKg: h.WeightKg}
	}
	result := coach.PlanAdaptation(coach.AdaptationInput{
		Goal:              goal,
		TargetWeightKg:    profile.TargetWeightKg,
		History:           samples,
		PreviousEquipment: previousEquipment,
		CurrentEquipment:  profile.Equipment,
	})
	return &result, nil
}

// ReviewAll runs and stores an adaptation review for every user with a
// profile. One failing user does not stop the others.
func (s *Service) ReviewAll(ctx context.Context) error {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range ids {
		if err := s.reviewAndStore(ctx, id); err != nil {
			s.log.Error("adaptation review failed", "user_id", id, "error", err)
			errs = append(errs, fmt.Errorf("user %d: %w", id, err))
		}
	}
	s.log.Info("adaptation reviews complete", "users", len(ids), "failed", len(errs))
	return errors.Join(errs...)
}

func (s *Service) reviewAndStore(ctx context.Context, userID int) error {
	plan, err := s.ReviewAdaptation(ctx, userID, nil)
	if err != nil {
		return err
	}
	triggers, err := json.Marshal(plan.Triggers)
	if err != nil {
		return fmt.Errorf("encoding triggers: %w", err)
	}
	if _, err := s.store.InsertAdaptationReview(ctx, models.AdaptationReviewRow{
		UserID:   userID,
		Priority: string(plan.Priority),
		Summary:  plan.Summary,
		Triggers: triggers,
	}); err != nil {
		return err
	}
	if plan.Priority == coach.PriorityHigh || plan.Priority == coach.PriorityMedium {
		s.log.Warn("plan needs adjusting", "user_id", userID, "priority", plan.Priority, "triggers", len(plan.Triggers))
	}
	return nil
}

// AdaptationReviews lists stored reviews, newest first.
func (s *Service) AdaptationReviews(ctx context.Context, userID, limit int) ([]models.AdaptationReviewRow, error) {
	return s.store.ListAdaptationReviews(ctx, userID, limit)
}
