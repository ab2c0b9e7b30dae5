package core

// orchestrator.go sequences entity imports for one run.
//
// State machine:
//
//	NotStarted -> Connecting -> Importing (per entity)* -> Summarizing -> Done
//	                  |
//	                  +-> Failed (connection exhausted, or a mapping defect found at startup)
//
// Entities run one at a time in the given order. Per entity the pipeline is
// read -> (provision table) -> (keep-first dedupe) -> Validate -> Map ->
// Upsert. Any entity-local failure is recorded and the run moves on; only a
// ConnectionError or MappingError ends the run early. A summary is always
// produced.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Orchestrator runs a sequence of entity imports against one connection.
type Orchestrator struct {
	Connector *Connector
	Sources   SourceReader
	Upserter  *Upserter
	Logger    *slog.Logger

	// ProvisionTables creates missing target tables before importing.
	ProvisionTables bool

	// FallbackTextLength is used for length_from_schema coercions when the
	// schema lookup yields nothing and no max_length is configured.
	FallbackTextLength int

	// Now is the clock; defaults to time.Now.
	Now func() time.Time

	// OnPhase, when set, is called on every state change.
	OnPhase func(phase Phase, entity string)

	// RunID names the run in logs and the report; generated when empty.
	RunID string
}

// Run imports the entities in order. The returned error is non-nil only
// for run-fatal failures (*MappingError, *ConnectionError, or ctx ending
// between entities); entity failures are reported in the RunReport.
func (o *Orchestrator) Run(ctx context.Context, entities []EntityDefinition) (*RunReport, error) {
	runID := o.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	report := &RunReport{
		RunID: runID,
		Phase: PhaseNotStarted,
	}
	report.Stats.EntitiesTotal = len(entities)
	report.Stats.StartTime = o.now()

	logger := o.logger().With("run_id", report.RunID)
	logger.Info("import run started", "entities", len(entities))

	// Configuration defects are caught before touching the store.
	for _, def := range entities {
		if err := ValidateDefinition(def); err != nil {
			return o.fail(logger, report, err)
		}
	}

	o.setPhase(report, PhaseConnecting, "")
	store, err := o.Connector.Connect(ctx)
	if err != nil {
		return o.fail(logger, report, err)
	}
	defer o.Connector.Disconnect(store)

	for _, def := range entities {
		if err := ctx.Err(); err != nil {
			return o.fail(logger, report, fmt.Errorf("import run stopped before %s: %w", def.Name(), err))
		}
		o.setPhase(report, PhaseImporting, def.Name())
		result, fatal := o.importEntity(ctx, logger, store, def, report)
		report.Entities = append(report.Entities, result)
		if fatal != nil {
			return o.fail(logger, report, fatal)
		}
	}

	o.setPhase(report, PhaseSummarizing, "")
	o.finish(report)
	o.logSummary(logger, report)
	o.setPhase(report, PhaseDone, "")

	return report, nil
}

// importEntity runs the pipeline for one entity and updates the counters.
// The second return value is set only for run-fatal errors.
func (o *Orchestrator) importEntity(ctx context.Context, runLogger *slog.Logger, store Store, def EntityDefinition, report *RunReport) (EntityResult, error) {
	profile := def.Profile
	result := EntityResult{Name: def.Name(), Table: profile.TargetTable}
	logger := runLogger.With("entity", def.Name(), "table", profile.TargetTable)
	stats := &report.Stats

	set, err := o.Sources.Read(ctx, def.Source)
	if errors.Is(err, ErrSourceNotFound) {
		msg := fmt.Sprintf("source %s not found, skipping %s", def.Source, def.Name())
		logger.Warn(msg, "source", def.Source)
		result.Status = EntitySkipped
		result.Diagnostics = append(result.Diagnostics, msg)
		stats.EntitiesSkipped++
		return result, nil
	}

	stats.EntitiesAttempted++
	logger.Info("starting import", "source", def.Source)

	failed := func(err error) (EntityResult, error) {
		result.Status = EntityFailed
		result.Error = err.Error()
		result.Code = MapError(err).Code
		stats.EntitiesFailed++
		logger.Error("entity import failed", "error", err)
		return result, nil
	}

	if err != nil {
		return failed(&SourceError{Entity: def.Name(), Source: def.Source, Err: err})
	}
	result.Read = set.Len()

	if o.ProvisionTables {
		if err := o.provision(ctx, logger, store, profile); err != nil {
			return failed(err)
		}
	}

	if profile.DedupeKeepFirst && profile.UniqueKey != "" {
		kept, removed := DedupeKeepFirst(set.Records, profile.UniqueKey)
		if removed > 0 {
			msg := fmt.Sprintf("removed %d record(s) with duplicate %s, keeping the first occurrence", removed, profile.UniqueKey)
			logger.Warn(msg, "remaining", len(kept))
			result.Diagnostics = append(result.Diagnostics, msg)
			set = RecordSet{Columns: set.Columns, Records: kept}
		}
	}

	ok, diags := Validate(set, profile)
	if !ok {
		for _, d := range diags {
			logger.Error("validation error", "detail", d)
		}
		result.Diagnostics = append(result.Diagnostics, diags...)
		return failed(&ValidationError{Entity: def.Name(), Diagnostics: diags})
	}

	spec := o.resolveLengths(ctx, logger, store, def)
	mapper, err := NewMapper(spec, profile)
	if err != nil {
		// a mapping defect ends the run after it is recorded like any failure
		failed(err)
		return result, err
	}
	mapper.Now = o.now

	mapped := mapper.Map(set.Records)
	if dropped := set.Len() - len(mapped); dropped > 0 {
		msg := fmt.Sprintf("dropped %d record(s) with null %v", dropped, profile.DropNullFields)
		logger.Warn(msg)
		result.Diagnostics = append(result.Diagnostics, msg)
	}
	stats.TotalRecords += len(mapped)

	applied, err := o.Upserter.Upsert(ctx, store, mapped, profile)
	result.Applied = applied
	if err != nil {
		return failed(err)
	}

	result.Status = EntitySucceeded
	stats.EntitiesSucceeded++
	logger.Info(fmt.Sprintf("Successfully imported %d %s", applied, def.Name()))
	return result, nil
}

// provision creates the target table when it is missing.
func (o *Orchestrator) provision(ctx context.Context, logger *slog.Logger, store Store, profile EntityProfile) error {
	exists, err := store.TableExists(ctx, profile.TargetTable)
	if err != nil {
		return &PersistenceError{Entity: profile.Name, Table: profile.TargetTable, Err: fmt.Errorf("check table: %w", err)}
	}
	if exists {
		return nil
	}
	if len(profile.Columns) == 0 {
		return &PersistenceError{Entity: profile.Name, Table: profile.TargetTable,
			Err: fmt.Errorf("table %s does not exist and no columns are declared to create it", profile.TargetTable)}
	}
	if err := store.CreateTable(ctx, profile); err != nil {
		return &PersistenceError{Entity: profile.Name, Table: profile.TargetTable, Err: fmt.Errorf("create table: %w", err)}
	}
	logger.Info("created table")
	return nil
}

// resolveLengths returns a copy of the mapping with length_from_schema
// coercions bound to the target column's declared length.
func (o *Orchestrator) resolveLengths(ctx context.Context, logger *slog.Logger, store Store, def EntityDefinition) MappingSpec {
	spec := def.Mapping
	coercions := make([]Coercion, len(spec.Coercions))
	copy(coercions, spec.Coercions)

	for i, c := range coercions {
		if c.Kind != CoerceString || !c.LengthFromSchema {
			continue
		}
		n, err := store.ColumnLength(ctx, def.Profile.TargetTable, c.Field)
		switch {
		case err == nil && n > 0:
			coercions[i].MaxLength = n
		case c.MaxLength > 0:
			logger.Warn("could not get column length, using configured max length",
				"column", c.Field, "max_length", c.MaxLength, "error", err)
		default:
			coercions[i].MaxLength = o.fallbackLength()
			logger.Warn("could not get column length, using default max length",
				"column", c.Field, "max_length", coercions[i].MaxLength, "error", err)
		}
		logger.Info("resolved column length", "column", c.Field, "max_length", coercions[i].MaxLength)
	}

	spec.Coercions = coercions
	return spec
}

func (o *Orchestrator) fail(logger *slog.Logger, report *RunReport, err error) (*RunReport, error) {
	report.Error = err.Error()
	o.finish(report)
	o.setPhase(report, PhaseFailed, "")
	logger.Error("import run failed", "error", err)
	o.logSummary(logger, report)
	return report, err
}

func (o *Orchestrator) finish(report *RunReport) {
	report.Stats.EndTime = o.now()
	report.Stats.Duration = report.Stats.EndTime.Sub(report.Stats.StartTime)
	report.Success = report.Error == "" && report.Stats.Success()
}

func (o *Orchestrator) logSummary(logger *slog.Logger, report *RunReport) {
	s := report.Stats
	attrs := []any{
		"success", report.Success,
		"entities_total", s.EntitiesTotal,
		"entities_attempted", s.EntitiesAttempted,
		"entities_succeeded", s.EntitiesSucceeded,
		"entities_failed", s.EntitiesFailed,
		"entities_skipped", s.EntitiesSkipped,
		"total_records", s.TotalRecords,
		"duration", s.Duration.Round(time.Millisecond),
	}
	if s.TotalRecords > 0 {
		attrs = append(attrs, "avg_ms_per_record", float64(s.AveragePerRecord().Microseconds())/1000)
	}
	logger.Info("IMPORT SUMMARY", attrs...)
}

func (o *Orchestrator) setPhase(report *RunReport, phase Phase, entity string) {
	report.Phase = phase
	if o.OnPhase != nil {
		o.OnPhase(phase, entity)
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o *Orchestrator) fallbackLength() int {
	if o.FallbackTextLength > 0 {
		return o.FallbackTextLength
	}
	return 20
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
