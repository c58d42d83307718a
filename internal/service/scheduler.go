package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron"
)

// DefaultReviewSchedule runs adaptation reviews once a week.
const DefaultReviewSchedule = "@weekly"

// Scheduler runs ReviewAll on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	svc     *Service
	timeout time.Duration
	log     *slog.Logger
}

// NewScheduler registers the review job. spec uses robfig/cron syntax:
// descriptors such as "@weekly" or "@every 24h", or six fields with seconds.
func NewScheduler(svc *Service, spec string, log *slog.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultReviewSchedule
	}
	s := &Scheduler{cron: cron.New(), svc: svc, timeout: 10 * time.Minute, log: log}
	if err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("parsing review schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	s.log.Info("scheduled adaptation review started")
	if err := s.svc.ReviewAll(ctx); err != nil {
		s.log.Error("scheduled adaptation review", "error", err, "duration", time.Since(start))
		return
	}
	s.log.Info("scheduled adaptation review finished", "duration", time.Since(start))
}

// Start begins running the job in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule. A review already running is not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
