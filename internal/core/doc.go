// Package core provides the batch import engine.
//
// This package holds all domain logic independent of any storage driver or
// transport. The CLI, the HTTP server and tests drive it through [Service]
// or an [Orchestrator] directly; database access goes through the [Store]
// interface implemented in internal/store.
//
// # Architecture
//
// A run is a pipeline of five components:
//
//   - Connector: opens the store with bounded exponential backoff.
//   - Validator: [Validate] gates a record set on required fields, nulls
//     and unique keys before anything is written.
//   - Mapper: renames fields, fills defaults, coerces types and drops
//     records per the entity's [MappingSpec].
//   - Upserter: writes mapped records in fixed-size batches, one
//     transaction per batch, insert-or-update on the conflict key.
//   - Orchestrator: sequences entities in registry order, isolates
//     per-entity failures and produces a [RunReport].
//
// # Entity Registry
//
// Entities are registered at init time using [Register], or loaded from a
// YAML catalogue and installed with [Replace]:
//
//	core.Register(core.EntityDefinition{
//	    Profile: core.EntityProfile{
//	        Name:           "cities",
//	        TargetTable:    "city",
//	        RequiredFields: []string{"id", "name"},
//	        UniqueKey:      "id",
//	        ConflictKey:    []string{"id"},
//	    },
//	    Group:  "customers",
//	    Source: "cities.xlsx",
//	    Order:  10,
//	})
//
// Order is ascending; parents must sort before children so foreign keys
// resolve.
//
// # Failure Model
//
// A [*ConnectionError] or [*MappingError] ends the run. Validation,
// source and persistence failures are recorded against the entity and the
// run continues. Batches committed before a failing batch stay committed;
// re-running is safe because every write is an upsert.
//
// # Error Handling
//
// Technical errors are mapped to coded, user-facing messages using
// [MapError]:
//
//   - CONN001-CONN003: connection errors
//   - DB001-DB006: database errors (constraints, lengths, missing tables)
//   - VAL001-VAL004: validation errors
//   - MAP001, SRC001-SRC002, RUN001-RUN003: configuration, source and run errors
package core
