// Package tables registers the built-in entity catalogue with the core registry.
// Import this package for its side effects to make the entities available.
//
// Entities are grouped the way the source spreadsheets are delivered:
// customers, tickets, calls and requests. Order values leave gaps so a
// YAML catalogue can slot entities in between.
package tables

import "github.com/JonMunkholm/bulkload/internal/core"

// Group names.
const (
	GroupCustomers = "customers"
	GroupTickets   = "tickets"
	GroupCalls     = "calls"
	GroupRequests  = "requests"
)

// Values used when the source leaves bookkeeping columns empty.
const (
	DefaultCompanyID = 0
	DefaultCreatedBy = 0
	NameLength       = 255
)

func id(name string) core.ColumnDef {
	return core.ColumnDef{Name: name, Type: core.ColumnBigInt, NotNull: true}
}

func intCol(name string) core.ColumnDef {
	return core.ColumnDef{Name: name, Type: core.ColumnInt}
}

func varchar(name string, n int) core.ColumnDef {
	return core.ColumnDef{Name: name, Type: core.ColumnVarchar, Length: n}
}

func text(name string) core.ColumnDef {
	return core.ColumnDef{Name: name, Type: core.ColumnText}
}

func timestamp(name string) core.ColumnDef {
	return core.ColumnDef{Name: name, Type: core.ColumnTimestamp}
}

// withAudit appends the bookkeeping columns most tables carry.
func withAudit(cols ...core.ColumnDef) []core.ColumnDef {
	return append(cols,
		intCol("company_id"),
		intCol("created_by"),
		timestamp("created_at"),
		timestamp("updated_at"),
	)
}

// auditDefaults fills company_id and created_by.
func auditDefaults(extra ...core.Default) []core.Default {
	return append([]core.Default{
		{Field: "company_id", Value: DefaultCompanyID},
		{Field: "created_by", Value: DefaultCreatedBy},
	}, extra...)
}

// ints coerces each field to an integer.
func ints(fields ...string) []core.Coercion {
	out := make([]core.Coercion, len(fields))
	for i, f := range fields {
		out[i] = core.Coercion{Field: f, Kind: core.CoerceInt}
	}
	return out
}

// stamped coerces created_at and updated_at, using the import time when
// the source has no value.
func stamped() []core.Coercion {
	return []core.Coercion{
		{Field: "created_at", Kind: core.CoerceTimestamp, OnMissing: core.NullNow},
		{Field: "updated_at", Kind: core.CoerceTimestamp, OnMissing: core.NullNow},
	}
}

func dates(policy core.NullPolicy, fields ...string) []core.Coercion {
	out := make([]core.Coercion, len(fields))
	for i, f := range fields {
		out[i] = core.Coercion{Field: f, Kind: core.CoerceTimestamp, OnMissing: policy}
	}
	return out
}

func name(field string) core.Coercion {
	return core.Coercion{Field: field, Kind: core.CoerceString, MaxLength: NameLength}
}

func coercions(groups ...[]core.Coercion) []core.Coercion {
	var out []core.Coercion
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// preserved are inserted once and never overwritten by a re-import.
var preserved = []string{"created_at", "created_by"}
