package core

// upsert.go drives mapped records into the target store.
//
// Records are partitioned into batches and each batch runs in its own
// transaction, strictly in input order. A failing batch is rolled back as a
// whole and processing of the entity stops; batches committed before it
// remain visible. Insert-or-update keyed by the profile's conflict key makes
// re-running the same input converge to the same rows.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Upserter applies record sets in per-batch transactions.
type Upserter struct {
	BatchSize int
	Logger    *slog.Logger
}

// NewUpserter creates an Upserter. A batchSize below 1 uses DefaultBatchSize.
func NewUpserter(batchSize int, logger *slog.Logger) *Upserter {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Upserter{BatchSize: batchSize, Logger: logger}
}

// Upsert writes records into profile.TargetTable and returns how many
// records were committed. On failure the error is a *PersistenceError
// naming the batch and, when known, the offending record's key.
func (u *Upserter) Upsert(ctx context.Context, store Store, records []Record, profile EntityProfile) (int, error) {
	batches := Partition(records, u.BatchSize)
	logger := u.logger().With("entity", profile.Name, "table", profile.TargetTable)

	if len(batches) == 0 {
		logger.Info("no records to apply")
		return 0, nil
	}

	applied := 0
	for i, batch := range batches {
		start := time.Now()
		if err := u.applyBatch(ctx, store, batch, profile); err != nil {
			err.Entity = profile.Name
			err.Table = profile.TargetTable
			err.Batch = i + 1
			err.Batches = len(batches)
			logger.Error("batch rolled back",
				"batch", i+1,
				"batches", len(batches),
				"record", err.Key,
				"error", err.Err,
			)
			return applied, err
		}

		applied += len(batch)
		logger.Info(fmt.Sprintf("Processed batch %d/%d", i+1, len(batches)),
			"records", len(batch),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return applied, nil
}

// applyBatch runs one batch in a single transaction.
func (u *Upserter) applyBatch(ctx context.Context, store Store, batch []Record, profile EntityProfile) *PersistenceError {
	tx, err := store.Begin(ctx)
	if err != nil {
		return &PersistenceError{Err: fmt.Errorf("begin transaction: %w", err)}
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				u.logger().Warn("rollback failed", "entity", profile.Name, "error", rbErr)
			}
		}
	}()

	for _, rec := range batch {
		plan := UpsertPlan{
			Table:       profile.TargetTable,
			Columns:     rec.Fields(),
			ConflictKey: profile.ConflictKey,
			Preserve:    profile.PreserveOnUpdate,
		}
		if err := tx.Upsert(ctx, plan, rec.Values()); err != nil {
			return &PersistenceError{Key: RecordKey(rec, profile.ConflictKey), Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		committed = true // a failed commit leaves nothing to roll back
		return &PersistenceError{Err: fmt.Errorf("commit: %w", err)}
	}
	committed = true
	return nil
}

func (u *Upserter) logger() *slog.Logger {
	if u.Logger == nil {
		return slog.Default()
	}
	return u.Logger
}

// RecordKey renders the conflict key of a record as "a=1,b=x".
func RecordKey(r Record, key []string) string {
	parts := make([]string, 0, len(key))
	for _, k := range key {
		v := r.Value(k)
		if IsNull(v) {
			parts = append(parts, k+"=null")
			continue
		}
		parts = append(parts, k+"="+KeyString(v))
	}
	return strings.Join(parts, ",")
}
