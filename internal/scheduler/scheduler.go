// Package scheduler runs the periodic due-queue report.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/cardlearn/internal/clock"
	"github.com/example/cardlearn/internal/logger"
	"github.com/example/cardlearn/pkg/models"
)

const jobTimeout = time.Minute

// DueSource counts due progress records per (user, deck)
type DueSource interface {
	DueCounts(ctx context.Context, today models.Date) ([]models.DueCount, error)
}

// Reporter receives the due counts gathered on every run
type Reporter interface {
	ReportDue(ctx context.Context, today models.Date, counts []models.DueCount) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    DueSource
	reporters []Reporter
	clock     clock.Clock
	interval  time.Duration
	log       *logger.Logger
}

// New creates a scheduler that reports due counts every interval
func New(source DueSource, clk clock.Clock, loc *time.Location, interval time.Duration, log *logger.Logger, reporters ...Reporter) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		source:    source,
		reporters: reporters,
		clock:     clk,
		interval:  interval,
		log:       log.With("component", "scheduler"),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.runJob); err != nil {
		return fmt.Errorf("failed to schedule due report: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info("Scheduler started", "interval", s.interval.String())
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := s.RunOnce(ctx); err != nil {
		s.log.Error("Due report failed", "error", err)
	}
}

// RunOnce gathers the current due counts and hands them to every reporter. Reporter
// failures are logged and do not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	today := clock.Today(s.clock)
	counts, err := s.source.DueCounts(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to count due cards: %w", err)
	}
	for _, r := range s.reporters {
		if err := r.ReportDue(ctx, today, counts); err != nil {
			s.log.Warn("Reporter failed", "error", err)
		}
	}
	return nil
}

// LogReporter writes one structured line per run.
type LogReporter struct {
	Log *logger.Logger
}

func (r LogReporter) ReportDue(_ context.Context, today models.Date, counts []models.DueCount) error {
	total := 0
	users := map[string]struct{}{}
	for _, c := range counts {
		total += c.Due
		users[c.UserID] = struct{}{}
	}
	r.Log.Info("Due queue",
		"today", today.String(),
		"due_total", total,
		"users", len(users),
		"queues", len(counts),
	)
	return nil
}
