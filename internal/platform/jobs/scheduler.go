// Package jobs runs the background maintenance jobs on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/salon_management_app/internal/platform/metrics"
	"github.com/robfig/cron/v3"
)

// AppointmentSweepJob is the job name reported in logs and metrics.
const AppointmentSweepJob = "appointment_sweep"

// jobTimeout bounds a single run.
const jobTimeout = 5 * time.Minute

// AppointmentSweeper closes appointments that ended without a final status.
type AppointmentSweeper interface {
	SweepPastAppointments(ctx context.Context) (int, error)
}

// Scheduler wraps a cron runner. Jobs never overlap with themselves.
type Scheduler struct {
	cron   *cron.Cron
	parser cron.Parser
	logger *slog.Logger

	mu      sync.Mutex
	running map[string]bool
}

// NewScheduler creates a scheduler that evaluates five-field specs in UTC.
func NewScheduler(logger *slog.Logger) *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser), cron.WithLocation(time.UTC)),
		parser:  parser,
		logger:  logger,
		running: make(map[string]bool),
	}
}

// Register adds a named job. The spec is validated before anything is scheduled.
func (s *Scheduler) Register(name, spec string, run func(ctx context.Context) error) error {
	if _, err := s.parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	_, err := s.cron.AddFunc(spec, func() { s.RunNow(name, run) })
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	s.logger.Info("Scheduled job registered", slog.String("job", name), slog.String("schedule", spec))
	return nil
}

// RegisterAppointmentSweep schedules the past appointment sweeper.
func (s *Scheduler) RegisterAppointmentSweep(spec string, sweeper AppointmentSweeper) error {
	return s.Register(AppointmentSweepJob, spec, func(ctx context.Context) error {
		n, err := sweeper.SweepPastAppointments(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			s.logger.Info("Closed past appointments", slog.Int("count", n))
		}
		return nil
	})
}

// RunNow executes a job synchronously unless a previous run is still in progress.
// It reports whether the job ran.
func (s *Scheduler) RunNow(name string, run func(ctx context.Context) error) bool {
	s.mu.Lock()
	if s.running[name] {
		s.mu.Unlock()
		s.logger.Warn("Skipping job run, previous run still in progress", slog.String("job", name))
		return false
	}
	s.running[name] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.running, name)
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := run(ctx)
	elapsed := time.Since(start)
	metrics.RecordJobRun(name, elapsed, err == nil)
	if err != nil {
		s.logger.Error("Scheduled job failed", slog.String("job", name), slog.String("error", err.Error()), slog.Duration("duration", elapsed))
	}
	return true
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for scheduled jobs to finish")
	}
}
