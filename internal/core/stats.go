package core

// stats.go holds the per-run accounting owned by the Orchestrator and its
// JSON report file.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Phase is the orchestrator state.
type Phase string

const (
	PhaseNotStarted  Phase = "not_started"
	PhaseConnecting  Phase = "connecting"
	PhaseImporting   Phase = "importing"
	PhaseSummarizing Phase = "summarizing"
	PhaseDone        Phase = "done"
	PhaseFailed      Phase = "failed"
)

// EntityStatus is the outcome of one entity import.
type EntityStatus string

const (
	EntitySucceeded EntityStatus = "succeeded"
	EntityFailed    EntityStatus = "failed"
	EntitySkipped   EntityStatus = "skipped"
)

// ImportStats are the run-level counters.
type ImportStats struct {
	EntitiesTotal     int           `json:"entities_total"`
	EntitiesAttempted int           `json:"entities_attempted"`
	EntitiesSucceeded int           `json:"entities_succeeded"`
	EntitiesFailed    int           `json:"entities_failed"`
	EntitiesSkipped   int           `json:"entities_skipped"`
	TotalRecords      int           `json:"total_records"`
	StartTime         time.Time     `json:"start_time"`
	EndTime           time.Time     `json:"end_time"`
	Duration          time.Duration `json:"-"`
}

// Success reports whether every attempted entity completed.
func (s ImportStats) Success() bool {
	return s.EntitiesFailed == 0
}

// AveragePerRecord returns the mean wall time per record, or 0 when no
// records were processed.
func (s ImportStats) AveragePerRecord() time.Duration {
	if s.TotalRecords == 0 {
		return 0
	}
	return s.Duration / time.Duration(s.TotalRecords)
}

// MarshalJSON adds duration_seconds and avg_seconds_per_record.
func (s ImportStats) MarshalJSON() ([]byte, error) {
	type plain ImportStats
	return json.Marshal(struct {
		plain
		DurationSeconds     float64 `json:"duration_seconds"`
		AvgSecondsPerRecord float64 `json:"avg_seconds_per_record"`
	}{
		plain:               plain(s),
		DurationSeconds:     s.Duration.Seconds(),
		AvgSecondsPerRecord: s.AveragePerRecord().Seconds(),
	})
}

// EntityResult is the outcome of one entity within a run.
type EntityResult struct {
	Name        string       `json:"name"`
	Table       string       `json:"table"`
	Status      EntityStatus `json:"status"`
	Read        int          `json:"records_read"`
	Applied     int          `json:"records_applied"`
	Diagnostics []string     `json:"diagnostics,omitempty"`
	Error       string       `json:"error,omitempty"`
	Code        string       `json:"code,omitempty"`
}

// RunReport is the complete result of one orchestrator run.
type RunReport struct {
	RunID    string         `json:"run_id"`
	Group    string         `json:"group,omitempty"`
	Phase    Phase          `json:"phase"`
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	Stats    ImportStats    `json:"stats"`
	Entities []EntityResult `json:"entities"`
}

// ReportFileName returns the stats file name for a run started at t.
func ReportFileName(t time.Time) string {
	return fmt.Sprintf("import_stats_%s.json", t.Format("20060102_150405"))
}

// WriteReport writes the report as indented JSON into dir and returns the
// file path.
func WriteReport(dir string, report *RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	path := filepath.Join(dir, ReportFileName(report.Stats.StartTime))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
