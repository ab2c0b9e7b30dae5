// Package store implements core.Store for the supported relational targets:
// PostgreSQL through a pgx pool, MySQL through go-sql-driver and SQLite
// through modernc.org/sqlite.
//
// Every store performs upserts as single-row INSERT ... ON CONFLICT (or ON
// DUPLICATE KEY) statements, cached per statement shape, inside the batch
// transaction the core Upserter opens.
package store

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/JonMunkholm/bulkload/internal/config"
	"github.com/JonMunkholm/bulkload/internal/core"
)

// Open connects to the store selected by cfg.Driver. Errors wrapped in
// backoff.Permanent are configuration problems that retrying cannot fix.
func Open(ctx context.Context, cfg config.DatabaseConfig) (core.Store, error) {
	switch cfg.Driver {
	case string(Postgres), "pgx", "postgresql":
		return OpenPostgres(ctx, cfg)
	case string(MySQL):
		return OpenMySQL(ctx, cfg)
	case string(SQLite):
		return OpenSQLite(ctx, cfg)
	}
	return nil, backoff.Permanent(fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver))
}

// Opener binds cfg into a core.OpenFunc for the Connector.
func Opener(cfg config.DatabaseConfig) core.OpenFunc {
	return func(ctx context.Context) (core.Store, error) {
		return Open(ctx, cfg)
	}
}
