package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceNotFound is returned by a SourceReader when the named source
	// does not exist. The orchestrator skips such entities.
	ErrSourceNotFound = errors.New("source not found")

	// ErrRunInProgress is returned when a run is requested while another
	// run holds the limiter.
	ErrRunInProgress = errors.New("an import run is already in progress")

	// ErrUnknownGroup is returned when no entities are registered for a group.
	ErrUnknownGroup = errors.New("unknown entity group")
)

// ConnectionError means the store could not be reached after all retries.
// It is fatal to the whole run.
type ConnectionError struct {
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ValidationError means an entity's record set failed the validation gate.
// It is local to the entity.
type ValidationError struct {
	Entity      string
	Diagnostics []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Entity, strings.Join(e.Diagnostics, "; "))
}

// MappingError is a defect in an entity's profile or mapping configuration.
// It is detected before any data is touched and is fatal.
type MappingError struct {
	Entity string
	Err    error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("invalid mapping for %s: %v", e.Entity, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// PersistenceError means a batch could not be committed. Batches before it
// stay committed; the rest of the entity is aborted.
type PersistenceError struct {
	Entity  string
	Table   string
	Batch   int // 1-based; 0 when the failure happened before the first batch
	Batches int
	Key     string // conflict key of the offending record, when known
	Err     error
}

func (e *PersistenceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "persisting %s into %s", e.Entity, e.Table)
	if e.Batch > 0 {
		fmt.Fprintf(&b, " (batch %d/%d", e.Batch, e.Batches)
		if e.Key != "" {
			fmt.Fprintf(&b, ", record %s", e.Key)
		}
		b.WriteByte(')')
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SourceError means a present source could not be read.
type SourceError struct {
	Entity string
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("reading %s for %s: %v", e.Source, e.Entity, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
