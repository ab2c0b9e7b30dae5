package core

// scheduler.go runs imports on a cron schedule.
//
// The scheduler is long-running and context-aware: it blocks until ctx is
// cancelled and then stops firing. A run already in flight is not cancelled
// with ctx; it is bounded by RunTimeout and drained through WaitForRuns. A
// tick that finds a run already active is skipped and logged, never queued.
// Failed runs are logged and do not stop the schedule.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleConfig holds the scheduler settings.
type ScheduleConfig struct {
	Spec       string // standard five-field cron expression
	Group      string // empty runs every entity
	RunOnStart bool
}

// StartScheduler blocks, running the configured group on every cron tick
// until ctx is cancelled.
func (s *Service) StartScheduler(ctx context.Context, cfg ScheduleConfig) error {
	logger := s.logger.With("component", "scheduler")

	c := cron.New(
		cron.WithLogger(cronLogger{logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
	)
	_, err := c.AddFunc(cfg.Spec, func() { s.runScheduled(ctx, logger, cfg.Group) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Spec, err)
	}

	if cfg.RunOnStart {
		go s.runScheduled(ctx, logger, cfg.Group)
	}

	c.Start()
	logger.Info("import scheduler started",
		"schedule", cfg.Spec,
		"group", cfg.Group,
	)

	<-ctx.Done()
	c.Stop()
	logger.Info("import scheduler stopped")
	return nil
}

// runScheduled performs one scheduled run.
func (s *Service) runScheduled(ctx context.Context, logger *slog.Logger, group string) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RunTimeout)
	defer cancel()

	report, err := s.runIfIdle(runCtx, group)
	switch {
	case IsBusy(err):
		logger.Warn("scheduled run skipped, another run is in progress")
		return
	case err != nil:
		logger.Error("scheduled run failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}

	logger.Info("scheduled run completed",
		"run_id", report.RunID,
		"success", report.Success,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
