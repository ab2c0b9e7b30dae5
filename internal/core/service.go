package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunTimeout is the maximum duration of one import run.
var RunTimeout = 2 * time.Hour

// ServiceConfig carries the import settings the service needs.
type ServiceConfig struct {
	BatchSize          int
	MaxRetries         int
	RetryUnit          time.Duration
	ReportDir          string // empty disables the stats file
	CreateTables       bool
	FallbackTextLength int
	RunWait            time.Duration // how long Run waits for the active run; 0 means DefaultRunWait
}

// RunStatus describes the service's current activity.
type RunStatus struct {
	Running bool             `json:"running"`
	RunID   string           `json:"run_id,omitempty"`
	Group   string           `json:"group,omitempty"`
	Phase   Phase            `json:"phase"`
	Entity  string           `json:"entity,omitempty"`
	Limiter RunLimiterStatus `json:"limiter"`
}

// Service runs imports on behalf of the CLI, the scheduler and the HTTP API.
// At most one run is active at a time.
type Service struct {
	open    OpenFunc
	sources SourceReader
	cfg     ServiceConfig
	logger  *slog.Logger
	limiter *RunLimiter

	mu      sync.RWMutex
	current RunStatus
	latest  *RunReport
}

// NewService creates a Service that connects with open and reads sources
// from sources.
func NewService(open OpenFunc, sources SourceReader, cfg ServiceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		open:    open,
		sources: sources,
		cfg:     cfg,
		logger:  logger,
		limiter: NewRunLimiter(DefaultMaxConcurrentRuns, cfg.RunWait),
		current: RunStatus{Phase: PhaseNotStarted},
	}
}

// Run imports every entity of group (all entities when group is empty) and
// blocks until the run finishes. When another run is active it waits up to
// RunWait for it, then returns ErrRunInProgress.
func (s *Service) Run(ctx context.Context, group string) (*RunReport, error) {
	defs, err := Entities(group)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	return s.execute(ctx, uuid.NewString(), group, defs)
}

// runIfIdle is Run without waiting: it returns ErrRunInProgress at once
// when another run holds the slot.
func (s *Service) runIfIdle(ctx context.Context, group string) (*RunReport, error) {
	defs, err := Entities(group)
	if err != nil {
		return nil, err
	}
	if !s.limiter.TryAcquire() {
		return nil, ErrRunInProgress
	}
	defer s.limiter.Release()

	return s.execute(ctx, uuid.NewString(), group, defs)
}

// Start begins a run in the background and returns its run ID once the run
// holds the limiter. The run is detached from ctx's cancellation but bounded
// by RunTimeout; use Latest to fetch the result.
func (s *Service) Start(ctx context.Context, group string) (string, error) {
	defs, err := Entities(group)
	if err != nil {
		return "", err
	}
	if !s.limiter.TryAcquire() {
		return "", ErrRunInProgress
	}

	runID := uuid.NewString()
	s.setStatus(RunStatus{Running: true, RunID: runID, Group: group, Phase: PhaseNotStarted})

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RunTimeout)
	go func() {
		defer cancel()
		defer s.limiter.Release()
		if _, err := s.execute(runCtx, runID, group, defs); err != nil {
			s.logger.Error("background import run failed", "run_id", runID, "group", group, "error", err)
		}
	}()
	return runID, nil
}

func (s *Service) execute(ctx context.Context, runID, group string, defs []EntityDefinition) (*RunReport, error) {
	s.setStatus(RunStatus{Running: true, RunID: runID, Group: group, Phase: PhaseNotStarted})

	logger := s.logger
	if group != "" {
		logger = logger.With("group", group)
	}

	orch := &Orchestrator{
		Connector:          NewConnector(s.open, s.cfg.MaxRetries, s.cfg.RetryUnit, logger),
		Sources:            s.sources,
		Upserter:           NewUpserter(s.cfg.BatchSize, logger),
		Logger:             logger,
		ProvisionTables:    s.cfg.CreateTables,
		FallbackTextLength: s.cfg.FallbackTextLength,
		RunID:              runID,
		OnPhase: func(phase Phase, entity string) {
			s.mu.Lock()
			s.current.Phase = phase
			s.current.Entity = entity
			s.mu.Unlock()
		},
	}

	report, err := orch.Run(ctx, defs)
	if report != nil {
		report.Group = group
		if s.cfg.ReportDir != "" {
			path, werr := WriteReport(s.cfg.ReportDir, report)
			if werr != nil {
				logger.Error("failed to write stats report", "error", werr)
			} else {
				logger.Info("stats report written", "path", path)
			}
		}
	}

	s.mu.Lock()
	s.current = RunStatus{Phase: PhaseFailed}
	if report != nil {
		s.latest = report
		s.current.Phase = report.Phase
	}
	s.mu.Unlock()

	return report, err
}

func (s *Service) setStatus(st RunStatus) {
	s.mu.Lock()
	s.current = st
	s.mu.Unlock()
}

// Latest returns the report of the most recent finished run, or nil.
func (s *Service) Latest() *RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Status returns what the service is doing right now.
func (s *Service) Status() RunStatus {
	s.mu.RLock()
	st := s.current
	s.mu.RUnlock()
	st.Limiter = s.limiter.Status()
	return st
}

// WaitForRuns blocks until the active run finishes or ctx expires.
// Used during graceful shutdown.
func (s *Service) WaitForRuns(ctx context.Context) error {
	if err := s.limiter.WaitForDrain(ctx); err != nil {
		return fmt.Errorf("waiting for import run: %w", err)
	}
	return nil
}

// IsBusy reports whether err means a run was refused because another is active.
func IsBusy(err error) bool {
	return errors.Is(err, ErrRunInProgress)
}
