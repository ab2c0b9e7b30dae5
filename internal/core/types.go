// Package core provides the batch import engine.
// This package has no transport or storage dependencies and can be driven
// by the CLI, the HTTP server or tests.
package core

import (
	"context"
	"strings"
)

// Store is a connection to the relational target.
// Implementations live in internal/store (PostgreSQL, MySQL, SQLite).
type Store interface {
	// Begin starts the atomic unit of work used for one batch.
	Begin(ctx context.Context) (Tx, error)

	// TableExists reports whether the target table is present.
	TableExists(ctx context.Context, table string) (bool, error)

	// CreateTable issues CREATE TABLE IF NOT EXISTS for the profile's columns.
	CreateTable(ctx context.Context, profile EntityProfile) error

	// ColumnLength returns the declared character length of a column,
	// or 0 when unknown.
	ColumnLength(ctx context.Context, table, column string) (int, error)

	// Close releases the connection.
	Close() error
}

// Tx is one batch transaction.
type Tx interface {
	// Upsert inserts the row or, when a row with the same conflict key
	// exists, updates its non-key columns. values follow plan.Columns.
	Upsert(ctx context.Context, plan UpsertPlan, values []any) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UpsertPlan describes one insert-or-update statement shape.
type UpsertPlan struct {
	Table       string
	Columns     []string
	ConflictKey []string
	Preserve    []string // inserted but never overwritten on update
}

// Key returns a stable identifier for statement caching.
func (p UpsertPlan) Key() string {
	return p.Table + "|" + strings.Join(p.Columns, ",") + "|" +
		strings.Join(p.ConflictKey, ",") + "|" + strings.Join(p.Preserve, ",")
}

// UpdateColumns returns the columns rewritten when the conflict key matches.
func (p UpsertPlan) UpdateColumns() []string {
	skip := make(map[string]bool, len(p.ConflictKey)+len(p.Preserve))
	for _, c := range p.ConflictKey {
		skip[c] = true
	}
	for _, c := range p.Preserve {
		skip[c] = true
	}
	var out []string
	for _, c := range p.Columns {
		if !skip[c] {
			out = append(out, c)
		}
	}
	return out
}

// ColumnType is the portable type of a provisioned column.
type ColumnType string

const (
	ColumnInt       ColumnType = "int"
	ColumnBigInt    ColumnType = "bigint"
	ColumnFloat     ColumnType = "float"
	ColumnText      ColumnType = "text"
	ColumnVarchar   ColumnType = "varchar"
	ColumnTimestamp ColumnType = "timestamp"
)

// ColumnDef declares one target column for table provisioning.
type ColumnDef struct {
	Name    string     `yaml:"name" json:"name"`
	Type    ColumnType `yaml:"type" json:"type"`
	Length  int        `yaml:"length,omitempty" json:"length,omitempty"` // varchar only
	NotNull bool       `yaml:"not_null,omitempty" json:"not_null,omitempty"`
}

// EntityProfile is the static descriptor of one importable entity.
// Field names in RequiredFields, UniqueKey and DropNullFields use the
// source vocabulary; ConflictKey, PreserveOnUpdate and Columns use the
// target vocabulary.
type EntityProfile struct {
	Name             string      `yaml:"name" json:"name"`
	TargetTable      string      `yaml:"table" json:"table"`
	RequiredFields   []string    `yaml:"required" json:"required,omitempty"`
	UniqueKey        string      `yaml:"unique_key" json:"unique_key,omitempty"`
	ConflictKey      []string    `yaml:"conflict_key" json:"conflict_key"`
	DropNullFields   []string    `yaml:"drop_null" json:"drop_null,omitempty"`
	PreserveOnUpdate []string    `yaml:"preserve_on_update" json:"preserve_on_update,omitempty"`
	DedupeKeepFirst  bool        `yaml:"dedupe_keep_first" json:"dedupe_keep_first,omitempty"`
	Columns          []ColumnDef `yaml:"columns" json:"columns,omitempty"`
}

// DropsNull reports whether nulls in the source field drop the row
// instead of failing validation.
func (p EntityProfile) DropsNull(field string) bool {
	for _, f := range p.DropNullFields {
		if f == field {
			return true
		}
	}
	return false
}

// IsConflictKey reports whether the target column is part of the conflict key.
func (p EntityProfile) IsConflictKey(column string) bool {
	for _, k := range p.ConflictKey {
		if k == column {
			return true
		}
	}
	return false
}

// CoercionKind names a Mapper conversion.
type CoercionKind string

const (
	CoerceInt       CoercionKind = "int"
	CoerceFloat     CoercionKind = "float"
	CoerceTimestamp CoercionKind = "timestamp"
	CoerceString    CoercionKind = "string"
)

// NullPolicy decides what an absent or unparseable timestamp becomes.
type NullPolicy string

const (
	NullKeep NullPolicy = "null"
	NullNow  NullPolicy = "now"
)

// Rename maps a source field name to a target field name.
type Rename struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Default fills a target field when its mapped value is null or absent.
type Default struct {
	Field string `yaml:"field" json:"field"`
	Value any    `yaml:"value" json:"value"`
}

// Coercion converts one target field.
//
//   - int/float: strings are cleaned (whitespace, currency, thousands
//     separators) and parsed; failures become Fallback.
//   - timestamp: parsed into time.Time; absent or unparseable values follow OnMissing.
//   - string: rendered as text and truncated to MaxLength characters.
type Coercion struct {
	Field     string       `yaml:"field" json:"field"`
	Kind      CoercionKind `yaml:"kind" json:"kind"`
	Fallback  any          `yaml:"fallback,omitempty" json:"fallback,omitempty"`
	OnMissing NullPolicy   `yaml:"on_missing,omitempty" json:"on_missing,omitempty"`
	MaxLength int          `yaml:"max_length,omitempty" json:"max_length,omitempty"`

	// LengthFromSchema resolves MaxLength from the target column before mapping.
	LengthFromSchema bool `yaml:"length_from_schema,omitempty" json:"length_from_schema,omitempty"`
}

// Copy duplicates a target field into another field, e.g. a user's name
// doubling as the login.
type Copy struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// MappingSpec translates source records into target records.
type MappingSpec struct {
	Renames   []Rename   `yaml:"renames" json:"renames,omitempty"`
	Copies    []Copy     `yaml:"copies" json:"copies,omitempty"`
	Defaults  []Default  `yaml:"defaults" json:"defaults,omitempty"`
	Coercions []Coercion `yaml:"coercions" json:"coercions,omitempty"`
}

// TargetOf returns the target name of a source field after renames.
func (m MappingSpec) TargetOf(source string) string {
	name := source
	for _, r := range m.Renames {
		if r.From == name {
			name = r.To
		}
	}
	return name
}

// EntityDefinition is a registered entity: where to read it, how to check
// and map it, and where it runs in the import order.
type EntityDefinition struct {
	Profile EntityProfile `yaml:",inline" json:"profile"`
	Mapping MappingSpec   `yaml:"mapping" json:"mapping"`
	Group   string        `yaml:"group" json:"group"`
	Label   string        `yaml:"label" json:"label,omitempty"`
	Source  string        `yaml:"source" json:"source"` // file name within the data directory
	Order   int           `yaml:"order" json:"order"`   // ascending; parents before children
}

// Name returns the entity name.
func (d EntityDefinition) Name() string {
	return d.Profile.Name
}

// SourceReader materializes a named tabular source.
// It returns ErrSourceNotFound when the source is absent.
type SourceReader interface {
	Read(ctx context.Context, name string) (RecordSet, error)
}
